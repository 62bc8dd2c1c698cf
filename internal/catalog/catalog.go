// Package catalog consumes the product catalog: current product details,
// stock decrements at checkout time and compensating restocks.
package catalog

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	PictureURL string  `json:"pictureUrl"`
	Stock      int     `json:"stock"`
}

type Lookup interface {
	// ProductInfo returns current catalog data or ErrProductNotFound.
	ProductInfo(ctx context.Context, productID int64) (*Product, error)

	// DecrementStock reduces available stock by quantity and fails with
	// ErrInsufficientStock if the count would go negative.
	DecrementStock(ctx context.Context, productID int64, quantity int) error

	// Restock returns quantity units to the available pool. Used to
	// compensate a decrement when a later checkout step fails.
	Restock(ctx context.Context, productID int64, quantity int) error
}
