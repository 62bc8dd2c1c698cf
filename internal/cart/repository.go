package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrVersionConflict = errors.New("cart was modified concurrently")
)

// Repository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type Repository interface {
	// Get returns the cart for email or ErrCartNotFound.
	Get(ctx context.Context, email string) (*Cart, error)

	// Save persists the cart with a compare-and-swap on its version.
	// A stale version fails with ErrVersionConflict; callers re-read and
	// retry. On success the cart's version is advanced.
	Save(ctx context.Context, cart *Cart) error
}
