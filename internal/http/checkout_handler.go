package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/just-smsm/storefront/internal/checkout"
)

// Checkouter runs the cart-to-order saga.
type Checkouter interface {
	Checkout(ctx context.Context, email string, request checkout.PayRequest) (string, error)
}

type CheckoutHandler struct {
	service Checkouter
	timeout time.Duration
}

func NewCheckoutHandler(service Checkouter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type PayRequestDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Details string `json:"details"`
}

type PayResponseDTO struct {
	SessionURL string `json:"sessionUrl"`
}

// POST /api/v1/cart/pay
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req PayRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Phone == "" || req.City == "" {
		respondError(w, http.StatusBadRequest, "invalid_address", "name, phone and city are required")
		return
	}

	sessionURL, err := h.service.Checkout(ctx, email, checkout.PayRequest{
		Name:    req.Name,
		Phone:   req.Phone,
		City:    req.City,
		Details: req.Details,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PayResponseDTO{SessionURL: sessionURL})
}
