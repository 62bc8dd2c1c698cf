package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/just-smsm/storefront/internal/cart"
	"github.com/just-smsm/storefront/internal/catalog"
	"github.com/just-smsm/storefront/internal/checkout"
	"github.com/just-smsm/storefront/internal/identity"
	"github.com/just-smsm/storefront/internal/order"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps domain sentinels to HTTP statuses in one place, so
// no handler invents its own mapping.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, checkout.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrDeliveryAlreadyAssigned),
		errors.Is(err, cart.ErrVersionConflict):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, checkout.ErrGatewayUnavailable):
		respondError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
