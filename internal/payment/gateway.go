// Package payment consumes the hosted-checkout payment gateway.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound means the gateway does not know the session id.
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrIntentNotReady means the session exists but the gateway has not
	// attached a payment intent yet. The intent arrives asynchronously;
	// callers re-query or wait for the confirmation signal.
	ErrIntentNotReady = errors.New("payment intent not attached yet")
)

type LineItem struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

type SessionParams struct {
	// Reference ties the gateway session back to the order it pays for.
	Reference  string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
}

type Session struct {
	ID string
	// URL is the gateway-hosted checkout page the caller is redirected to.
	URL string
	// PaymentIntentID is set when the gateway returned it on creation;
	// usually empty until the second round trip.
	PaymentIntentID string
}

type Gateway interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)

	// PaymentIntent resolves a session id to its payment intent id. Fails
	// with ErrSessionNotFound for unknown sessions and ErrIntentNotReady
	// while the gateway has not attached the intent.
	PaymentIntent(ctx context.Context, sessionID string) (string, error)
}
