package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/just-smsm/storefront/internal/checkout"
)

type checkouterMock struct {
	sessionURL string
	err        error
	gotEmail   string
	gotRequest checkout.PayRequest
}

func (m *checkouterMock) Checkout(_ context.Context, email string, request checkout.PayRequest) (string, error) {
	m.gotEmail = email
	m.gotRequest = request
	if m.err != nil {
		return "", m.err
	}
	return m.sessionURL, nil
}

func payBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(PayRequestDTO{
		Name:    "Jordan Smith",
		Phone:   "+1-555-0101",
		City:    "Springfield",
		Details: "12 Oak Street",
	})
	if err != nil {
		t.Fatalf("marshal pay request: %v", err)
	}
	return body
}

func TestPay_Success(t *testing.T) {
	mock := &checkouterMock{sessionURL: "https://gateway.test/pay/cs_1"}
	handler := NewCheckoutHandler(mock, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/pay", bytes.NewReader(payBody(t))))

	handler.Pay(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response PayResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.SessionURL != "https://gateway.test/pay/cs_1" {
		t.Errorf("Unexpected session url: %s", response.SessionURL)
	}
	if mock.gotEmail != "user@shop.test" {
		t.Errorf("Expected resolved email to be passed through, got %s", mock.gotEmail)
	}
	if mock.gotRequest.City != "Springfield" {
		t.Errorf("Unexpected address in pay request: %+v", mock.gotRequest)
	}
}

func TestPay_Unauthorized(t *testing.T) {
	handler := NewCheckoutHandler(&checkouterMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/pay", bytes.NewReader(payBody(t)))

	handler.Pay(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestPay_MissingAddressFields(t *testing.T) {
	handler := NewCheckoutHandler(&checkouterMock{}, 5*time.Second)

	body, _ := json.Marshal(PayRequestDTO{Name: "Jordan Smith"})
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/pay", bytes.NewReader(body)))

	handler.Pay(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestPay_EmptyCart(t *testing.T) {
	handler := NewCheckoutHandler(&checkouterMock{err: checkout.ErrEmptyCart}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/pay", bytes.NewReader(payBody(t))))

	handler.Pay(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestPay_GatewayUnavailable(t *testing.T) {
	handler := NewCheckoutHandler(&checkouterMock{err: checkout.ErrGatewayUnavailable}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("POST", "/pay", bytes.NewReader(payBody(t))))

	handler.Pay(recorder, request)

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}
}
