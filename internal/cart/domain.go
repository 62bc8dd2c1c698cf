package cart

import "time"

// Cart is the per-user selection awaiting checkout, keyed by the owner's
// email. TotalPrice is always recomputed from Items, never written directly.
type Cart struct {
	ID         string    `bson:"_id,omitempty"`
	Email      string    `bson:"email"`
	Items      []Item    `bson:"items"`
	TotalPrice float64   `bson:"total_price"`
	Version    int64     `bson:"version"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type Item struct {
	ProductID   int64     `bson:"product_id"`
	ProductName string    `bson:"product_name"`
	UnitPrice   float64   `bson:"unit_price"`
	PictureURL  string    `bson:"picture_url"`
	Quantity    int       `bson:"quantity"`
	AddedAt     time.Time `bson:"added_at"`
}

func newCart(email string) *Cart {
	now := time.Now()
	return &Cart{
		Email:     email,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// addItem appends a new line or increments the quantity of an existing one.
// At most one line per product id exists in a cart.
func (c *Cart) addItem(item Item) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity++
			c.recomputeTotal()
			return
		}
	}
	item.Quantity = 1
	item.AddedAt = time.Now()
	c.Items = append(c.Items, item)
	c.recomputeTotal()
}

// removeItem deletes the line for productID. Removing an absent line is a
// no-op.
func (c *Cart) removeItem(productID int64) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.recomputeTotal()
}

// setQuantity reports whether a line for productID existed.
func (c *Cart) setQuantity(productID int64, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.recomputeTotal()
			return true
		}
	}
	return false
}

func (c *Cart) clear() {
	c.Items = []Item{}
	c.recomputeTotal()
}

func (c *Cart) recomputeTotal() {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	c.TotalPrice = total
}
