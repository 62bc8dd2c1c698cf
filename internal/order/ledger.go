package order

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Ledger owns the order lifecycle. All transitions go through it so the
// state machine in CanTransitionTo is enforced in one place.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) Create(ctx context.Context, order *Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.Status = StatusAwaitingPayment
	return l.repo.Create(ctx, order)
}

// MarkPaid applies the payment-confirmation signal. Re-delivery of the same
// confirmation is not an error: an order already Paid with the same payment
// intent is left as is.
func (l *Ledger) MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	existing, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.Status == StatusPaid {
		if existing.PaymentIntentID != nil && *existing.PaymentIntentID == paymentIntentID {
			return nil
		}
		return ErrIllegalTransition
	}
	if !CanTransitionTo(existing.Status, StatusPaid) {
		return ErrIllegalTransition
	}

	if existing.PaymentIntentID == nil || *existing.PaymentIntentID == "" {
		// the intent fetch during checkout may have raced the gateway;
		// the confirmation carries the authoritative id
		secret := ""
		if existing.ClientSecret != nil {
			secret = *existing.ClientSecret
		}
		if errSet := l.repo.SetPaymentRefs(ctx, id, &paymentIntentID, secret); errSet != nil {
			return errSet
		}
	}

	return l.repo.UpdateStatus(ctx, id, existing.Status, StatusPaid, nil)
}

func (l *Ledger) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return l.repo.UpdateStatus(ctx, id, StatusAwaitingPayment, StatusFailed, &reason)
}

func (l *Ledger) Cancel(ctx context.Context, id uuid.UUID) error {
	return l.repo.UpdateStatus(ctx, id, StatusAwaitingPayment, StatusCancelled, nil)
}

// RecordPaymentRefs stores the gateway session id (client secret) and, when
// already known, the payment intent id.
func (l *Ledger) RecordPaymentRefs(ctx context.Context, id uuid.UUID, paymentIntentID *string, clientSecret string) error {
	return l.repo.SetPaymentRefs(ctx, id, paymentIntentID, clientSecret)
}

// Deliver assigns a delivery method to a Paid order that has none yet and
// moves it to Delivered. Re-invoking with the same method id is idempotent;
// a different id fails with ErrDeliveryAlreadyAssigned.
func (l *Ledger) Deliver(ctx context.Context, id uuid.UUID, deliveryMethodID int64) (*Order, error) {
	existing, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.DeliveryMethodID != nil {
		if *existing.DeliveryMethodID == deliveryMethodID {
			return existing, nil
		}
		return nil, ErrDeliveryAlreadyAssigned
	}
	if existing.Status != StatusPaid {
		return nil, fmt.Errorf("%w: cannot deliver order in status %s", ErrIllegalTransition, existing.Status)
	}

	if errAssign := l.repo.AssignDelivery(ctx, id, deliveryMethodID); errAssign != nil {
		return nil, errAssign
	}

	delivered, err := l.repo.GetByID(ctx, id)
	if err != nil {
		log.Printf("order %s delivered but re-read failed: %v", id, err)
		return nil, err
	}
	return delivered, nil
}

func (l *Ledger) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return l.repo.GetByID(ctx, id)
}

func (l *Ledger) ListAll(ctx context.Context) ([]*Order, error) {
	return l.repo.ListAll(ctx)
}

func (l *Ledger) ListByEmail(ctx context.Context, email string) ([]*Order, error) {
	return l.repo.ListByEmail(ctx, email)
}

func (l *Ledger) ListWithDeliveryAssigned(ctx context.Context) ([]*Order, error) {
	return l.repo.ListWithDeliveryAssigned(ctx)
}

func (l *Ledger) ListAwaitingDelivery(ctx context.Context) ([]*Order, error) {
	return l.repo.ListAwaitingDelivery(ctx)
}
