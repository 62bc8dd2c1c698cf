package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/just-smsm/storefront/internal/cart"
)

// CartService is what the cart handler consumes; mutations return the
// updated cart so every response shows the caller the state they produced.
type CartService interface {
	GetCart(ctx context.Context, email string) (*cart.Cart, error)
	AddItem(ctx context.Context, email string, productID int64) (*cart.Cart, error)
	RemoveItem(ctx context.Context, email string, productID int64) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, email string, productID int64, quantity int) (*cart.Cart, error)
	Clear(ctx context.Context, email string) (*cart.Cart, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"productId"`
}

type UpdateQuantityRequestDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartItemDTO struct {
	ProductID  int64   `json:"productId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	PictureURL string  `json:"pictureUrl"`
	Quantity   int     `json:"quantity"`
}

type CartResponseDTO struct {
	Items      []CartItemDTO `json:"items"`
	TotalPrice float64       `json:"totalPrice"`
}

func convertCart(c *cart.Cart) CartResponseDTO {
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemDTO{
			ProductID:  item.ProductID,
			Name:       item.ProductName,
			Price:      item.UnitPrice,
			PictureURL: item.PictureURL,
			Quantity:   item.Quantity,
		})
	}
	return CartResponseDTO{
		Items:      items,
		TotalPrice: c.TotalPrice,
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	current, err := h.carts.GetCart(ctx, email)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(current))
}

// POST /api/v1/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
		return
	}

	updated, err := h.carts.AddItem(ctx, email, req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertCart(updated))
}

// PUT /api/v1/cart
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	updated, err := h.carts.UpdateQuantity(ctx, email, req.ProductID, req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(updated))
}

// DELETE /api/v1/cart/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	productIDStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be a positive integer")
		return
	}

	updated, err := h.carts.RemoveItem(ctx, email, productID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(updated))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	updated, err := h.carts.Clear(ctx, email)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(updated))
}
