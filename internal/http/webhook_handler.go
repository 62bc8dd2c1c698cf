package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/just-smsm/storefront/internal/order/events"
)

const maxWebhookBody = 64 << 10 // Stripe recommends bounding the payload read

// ConfirmationPublisher hands verified payment confirmations to the event
// pipeline; the order consumer applies them.
type ConfirmationPublisher interface {
	Publish(ctx context.Context, event events.PaymentConfirmed) error
}

type WebhookHandler struct {
	signingSecret string
	publisher     ConfirmationPublisher
}

func NewWebhookHandler(signingSecret string, publisher ConfirmationPublisher) *WebhookHandler {
	return &WebhookHandler{
		signingSecret: signingSecret,
		publisher:     publisher,
	}
}

// POST /webhooks/stripe
//
// The handler only verifies the signature and republishes; it never touches
// the database, so a slow ledger cannot make the gateway retry storm.
func (h *WebhookHandler) HandleStripeEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read body")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.signingSecret)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
		return
	}

	if event.Type != "checkout.session.completed" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed session payload")
		return
	}
	if session.ClientReferenceID == "" {
		log.Printf("webhook: session %s has no order reference, ignoring", session.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	confirmation := events.PaymentConfirmed{
		OrderID:   session.ClientReferenceID,
		SessionID: session.ID,
	}
	if session.PaymentIntent != nil {
		confirmation.PaymentIntentID = session.PaymentIntent.ID
	}

	if err := h.publisher.Publish(r.Context(), confirmation); err != nil {
		// 5xx makes the gateway redeliver; the consumer side is idempotent
		log.Printf("webhook: publish confirmation for order %s failed: %v", confirmation.OrderID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to queue confirmation")
		return
	}

	w.WriteHeader(http.StatusOK)
}
