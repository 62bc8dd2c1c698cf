package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/just-smsm/storefront/internal/order"
	"github.com/just-smsm/storefront/internal/payment"
)

// createSession asks the gateway for a hosted checkout session. One retry
// with backoff on failure, nothing beyond that; the final error leaves the
// order to be marked Failed by the caller.
func (s *Service) createSession(ctx context.Context, ord *order.Order) (*payment.Session, error) {
	params := payment.SessionParams{
		Reference:  ord.ID.String(),
		Items:      sessionLineItems(ord),
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	}

	sess, err := s.createSessionOnce(ctx, params)
	if err == nil {
		return sess, nil
	}
	log.Printf("order %s: session creation failed, retrying: %v", ord.ID, err)

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, ctx.Err())
	case <-time.After(s.retryBackoff):
	}

	sess, err = s.createSessionOnce(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return sess, nil
}

func (s *Service) createSessionOnce(ctx context.Context, params payment.SessionParams) (*payment.Session, error) {
	sessionCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return s.gateway.CreateSession(sessionCtx, params)
}

func sessionLineItems(ord *order.Order) []payment.LineItem {
	items := make([]payment.LineItem, 0, len(ord.Items))
	for _, item := range ord.Items {
		items = append(items, payment.LineItem{
			Name:      item.ProductName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return items
}
