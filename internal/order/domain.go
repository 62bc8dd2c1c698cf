package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusDelivered       Status = "DELIVERED"
	StatusFailed          Status = "FAILED"
	StatusCancelled       Status = "CANCELLED"
)

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed || s == StatusCancelled
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo encodes the order lifecycle. No backward transitions exist
// from any state; payment confirmation is the only way to Paid.
func CanTransitionTo(from, to Status) bool {
	switch from {
	case StatusAwaitingPayment:
		return to == StatusPaid || to == StatusFailed || to == StatusCancelled
	case StatusPaid:
		return to == StatusDelivered
	default:
		return false
	}
}

// Address is the shipping destination, embedded in the order (a value, not a
// referenced aggregate).
type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Details string `json:"details"`
}

// Item is an immutable snapshot of a cart line taken at checkout time. Later
// catalog changes never affect a placed order.
type Item struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	PictureURL  string  `json:"picture_url"`
	Subtotal    float64 `json:"subtotal"`
}

type Order struct {
	ID               uuid.UUID
	UserEmail        string
	Status           Status
	ShippingAddress  Address
	DeliveryMethodID *int64
	PaymentIntentID  *string
	ClientSecret     *string
	FailureReason    *string
	Items            []Item
	TotalPrice       float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
