package checkout

import (
	"github.com/google/uuid"

	"github.com/just-smsm/storefront/internal/cart"
	"github.com/just-smsm/storefront/internal/order"
)

// snapshotOrder copies every cart line into an immutable order item with the
// name, price and picture as of now. Later catalog changes never reach a
// placed order.
func (s *Service) snapshotOrder(c *cart.Cart, email string, request PayRequest) *order.Order {
	items := make([]order.Item, 0, len(c.Items))
	var total float64
	for _, line := range c.Items {
		subtotal := line.UnitPrice * float64(line.Quantity)
		items = append(items, order.Item{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			PictureURL:  line.PictureURL,
			Subtotal:    subtotal,
		})
		total += subtotal
	}

	return &order.Order{
		ID:         uuid.New(),
		UserEmail:  email,
		Items:      items,
		TotalPrice: total,
		ShippingAddress: order.Address{
			Name:    request.Name,
			Phone:   request.Phone,
			City:    request.City,
			Details: request.Details,
		},
	}
}
