package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeGateway implements Gateway on Stripe Checkout sessions. Amounts go
// over the wire in cents.
type StripeGateway struct {
	currency string
}

func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{currency: "usd"}
}

func (g *StripeGateway) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Items))
	for _, item := range params.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(toCents(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(params.SuccessURL),
		CancelURL:          stripe.String(params.CancelURL),
		ClientReferenceID:  stripe.String(params.Reference),
	}
	sessionParams.Context = ctx

	created, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	result := &Session{
		ID:  created.ID,
		URL: created.URL,
	}
	if created.PaymentIntent != nil {
		result.PaymentIntentID = created.PaymentIntent.ID
	}
	return result, nil
}

// PaymentIntent re-fetches the session: Stripe attaches the intent
// asynchronously and does not guarantee it on creation.
func (g *StripeGateway) PaymentIntent(ctx context.Context, sessionID string) (string, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx

	fetched, err := session.Get(sessionID, getParams)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("get checkout session: %w", err)
	}

	if fetched.PaymentIntent == nil || fetched.PaymentIntent.ID == "" {
		return "", ErrIntentNotReady
	}
	return fetched.PaymentIntent.ID, nil
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
