// Package checkout converts a non-empty cart into a durable order and an
// active payment session. The order is persisted before any external call,
// and every later failure leaves it in a named, queryable state.
package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/just-smsm/storefront/internal/cart"
	"github.com/just-smsm/storefront/internal/catalog"
	"github.com/just-smsm/storefront/internal/order"
	"github.com/just-smsm/storefront/internal/payment"
)

// CartStore is the slice of the cart service the saga reads and clears. The
// read is the authoritative one: a cached copy must never be what gets
// snapshotted into an order.
type CartStore interface {
	CurrentCart(ctx context.Context, email string) (*cart.Cart, error)
	Clear(ctx context.Context, email string) (*cart.Cart, error)
}

// Ledger is the slice of the order ledger the saga drives.
type Ledger interface {
	Create(ctx context.Context, o *order.Order) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	RecordPaymentRefs(ctx context.Context, id uuid.UUID, paymentIntentID *string, clientSecret string) error
}

// UserDirectory answers the known-user precondition.
type UserDirectory interface {
	Exists(ctx context.Context, email string) (bool, error)
}

type PayRequest struct {
	Name    string
	Phone   string
	City    string
	Details string
}

type Service struct {
	carts   CartStore
	ledger  Ledger
	gateway payment.Gateway
	stock   catalog.Lookup
	users   UserDirectory

	successURL     string
	cancelURL      string
	gatewayTimeout time.Duration
	retryBackoff   time.Duration
}

func NewService(
	carts CartStore,
	ledger Ledger,
	gateway payment.Gateway,
	stock catalog.Lookup,
	users UserDirectory,
	successURL, cancelURL string,
) *Service {
	return &Service{
		carts:          carts,
		ledger:         ledger,
		gateway:        gateway,
		stock:          stock,
		users:          users,
		successURL:     successURL,
		cancelURL:      cancelURL,
		gatewayTimeout: 5 * time.Second,
		retryBackoff:   500 * time.Millisecond,
	}
}

// Checkout runs the saga for one cart and returns the gateway-hosted
// checkout URL. Once the order is persisted the flow is not cancellable by
// the caller; failures surface as the order transitioning to Failed.
func (s *Service) Checkout(ctx context.Context, email string, request PayRequest) (string, error) {
	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrUserNotFound
	}

	current, err := s.carts.CurrentCart(ctx, email)
	if err != nil {
		return "", err
	}
	if len(current.Items) == 0 {
		return "", ErrEmptyCart
	}

	// The order commits before any external call, so a crash later still
	// leaves a recoverable AwaitingPayment order.
	ord := s.snapshotOrder(current, email, request)
	if errCreate := s.ledger.Create(ctx, ord); errCreate != nil {
		return "", errCreate
	}

	sess, err := s.createSession(ctx, ord)
	if err != nil {
		if errMark := s.ledger.MarkFailed(ctx, ord.ID, err.Error()); errMark != nil {
			log.Printf("order %s: mark failed error: %v", ord.ID, errMark)
		}
		return "", err
	}

	intentID := s.resolvePaymentIntent(ctx, ord.ID, sess)
	if errRefs := s.ledger.RecordPaymentRefs(ctx, ord.ID, intentID, sess.ID); errRefs != nil {
		return "", errRefs
	}

	if errStock := s.decrementStock(ctx, ord); errStock != nil {
		if errMark := s.ledger.MarkFailed(ctx, ord.ID, errStock.Error()); errMark != nil {
			log.Printf("order %s: mark failed error: %v", ord.ID, errMark)
		}
		return "", errStock
	}

	s.clearCart(ctx, email, ord.ID)

	return sess.URL, nil
}

// resolvePaymentIntent performs the second gateway round trip. The intent is
// attached asynchronously, so its absence is a recoverable state: the order
// keeps the session id and the confirmation signal carries the intent later.
func (s *Service) resolvePaymentIntent(ctx context.Context, orderID uuid.UUID, sess *payment.Session) *string {
	if sess.PaymentIntentID != "" {
		return &sess.PaymentIntentID
	}

	intentCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	intentID, err := s.gateway.PaymentIntent(intentCtx, sess.ID)
	if err != nil {
		if errors.Is(err, payment.ErrIntentNotReady) {
			log.Printf("order %s: payment intent not ready for session %s", orderID, sess.ID)
		} else {
			log.Printf("order %s: payment intent lookup failed: %v", orderID, err)
		}
		return nil
	}
	return &intentID
}

// clearCart empties the originating cart. The order and session are durable
// at this point, so a clear failure is logged and retried once, never
// surfaced to the caller.
func (s *Service) clearCart(ctx context.Context, email string, orderID uuid.UUID) {
	if _, err := s.carts.Clear(ctx, email); err == nil {
		return
	} else {
		log.Printf("order %s: cart clear failed, retrying: %v", orderID, err)
	}

	if _, err := s.carts.Clear(ctx, email); err != nil {
		log.Printf("order %s: cart clear failed after retry: %v", orderID, err)
	}
}
