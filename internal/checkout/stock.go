package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/just-smsm/storefront/internal/order"
)

// decrementStock reduces the stock count for every purchased product. If any
// decrement fails, the ones already applied are restocked so the catalog is
// back where it started; a restock failure is logged with the order id for
// manual reconciliation and does not mask the original error.
func (s *Service) decrementStock(ctx context.Context, ord *order.Order) error {
	for i, item := range ord.Items {
		err := s.stock.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		s.restock(ctx, ord, ord.Items[:i])
		return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
	}
	return nil
}

func (s *Service) restock(ctx context.Context, ord *order.Order, applied []order.Item) {
	for _, item := range applied {
		if err := s.stock.Restock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("order %s: restock of product %d x%d failed, needs manual reconciliation: %v",
				ord.ID, item.ProductID, item.Quantity, err)
		}
	}
}
