package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrIllegalTransition       = errors.New("illegal order status transition")
	ErrDeliveryAlreadyAssigned = errors.New("order already has a delivery method assigned")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByEmail(ctx context.Context, email string) ([]*Order, error)
	ListWithDeliveryAssigned(ctx context.Context) ([]*Order, error)
	ListAwaitingDelivery(ctx context.Context) ([]*Order, error)

	// UpdateStatus moves the order from expectFrom to to. The guard is
	// enforced in the database so concurrent transitions cannot race; a
	// mismatch fails with ErrIllegalTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectFrom, to Status, reason *string) error

	// SetPaymentRefs records the gateway identifiers after the session
	// exists. The payment intent may still be unknown at that point.
	SetPaymentRefs(ctx context.Context, id uuid.UUID, paymentIntentID *string, clientSecret string) error

	// AssignDelivery sets the delivery method and moves the order to
	// Delivered in one statement; only unassigned Paid orders match.
	AssignDelivery(ctx context.Context, id uuid.UUID, deliveryMethodID int64) error

	RunMigrations(cred *Credentials) error
	Close() error
}
