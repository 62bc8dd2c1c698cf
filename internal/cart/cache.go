package cart

import (
	"context"
	"errors"
)

type Cache interface {
	Get(ctx context.Context, email string) (*Cart, error)
	Set(ctx context.Context, email string, cart *Cart) error
	Delete(ctx context.Context, email string) error
}

var ErrCacheMiss = errors.New("cache miss")
