package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/just-smsm/storefront/internal/cart"
	"github.com/just-smsm/storefront/internal/catalog"
)

type cartServiceMock struct {
	cart *cart.Cart
	err  error
}

func (m cartServiceMock) GetCart(context.Context, string) (*cart.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m cartServiceMock) AddItem(context.Context, string, int64) (*cart.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m cartServiceMock) RemoveItem(context.Context, string, int64) (*cart.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m cartServiceMock) UpdateQuantity(context.Context, string, int64, int) (*cart.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m cartServiceMock) Clear(context.Context, string) (*cart.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func sampleCart() *cart.Cart {
	return &cart.Cart{
		Email: "user@shop.test",
		Items: []cart.Item{
			{ProductID: 1, ProductName: "keyboard", UnitPrice: 49.99, Quantity: 2},
		},
		TotalPrice: 99.98,
	}
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(WithEmail(r.Context(), "user@shop.test"))
}

func TestGetCart_Success(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/", nil))

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(response.Items))
	}
	if response.Items[0].Name != "keyboard" {
		t.Errorf("Expected item name 'keyboard', got '%s'", response.Items[0].Name)
	}
	if response.TotalPrice != 99.98 {
		t.Errorf("Expected total 99.98, got %f", response.TotalPrice)
	}
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	// no principal in context

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "unauthorized" {
		t.Errorf("Expected error code 'unauthorized', got '%s'", response.Code)
	}
}

func TestAddItem_Created(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 1})
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/", bytes.NewReader(body)))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
}

func TestAddItem_InvalidProductID(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 0})
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/", bytes.NewReader(body)))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{err: catalog.ErrProductNotFound}, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 404})
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/", bytes.NewReader(body)))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestUpdateQuantity_ZeroRejected(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	body, _ := json.Marshal(UpdateQuantityRequestDTO{ProductID: 1, Quantity: 0})
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("PUT", "/", bytes.NewReader(body)))

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_quantity" {
		t.Errorf("Expected error code 'invalid_quantity', got '%s'", response.Code)
	}
}

func TestUpdateQuantity_MissingLine(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{err: cart.ErrItemNotFound}, 5*time.Second)

	body, _ := json.Marshal(UpdateQuantityRequestDTO{ProductID: 5, Quantity: 3})
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("PUT", "/", bytes.NewReader(body)))

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestRemoveItem_Success(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("DELETE", "/1", nil))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "1")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestRemoveItem_BadProductID(t *testing.T) {
	handler := NewCartHandler(cartServiceMock{cart: sampleCart()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("DELETE", "/abc", nil))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "abc")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestClearCart_Success(t *testing.T) {
	empty := &cart.Cart{Email: "user@shop.test", Items: []cart.Item{}}
	handler := NewCartHandler(cartServiceMock{cart: empty}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("DELETE", "/", nil))

	handler.ClearCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(response.Items))
	}
}
