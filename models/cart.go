package models

import "time"

// VariantKey identifies a variant within a product by its size and color.
type VariantKey struct {
	Size  string `json:"size" binding:"required"`
	Color string `json:"color" binding:"required"`
}

// CartLine is one (product, variant, quantity) entry in a user's cart.
// Price is the variant price at the time the line was added; checkout
// re-prices against the live catalog, so this value is advisory only.
type CartLine struct {
	ProductID string     `json:"product_id"`
	Variant   VariantKey `json:"variant"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
}

// Cart holds a user's active cart. At most one line exists per
// (product, variant) pair; re-adding merges quantities. Carts are created
// lazily on first access and are emptied, never deleted.
type Cart struct {
	UserID     string     `json:"user_id"`
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Recalculate recomputes the derived totals from the current lines. It must
// be called after every mutation; totals are never persisted stale.
func (c *Cart) Recalculate() {
	c.TotalItems = 0
	c.TotalPrice = 0
	for _, line := range c.Items {
		c.TotalItems += line.Quantity
		c.TotalPrice += line.Price * float64(line.Quantity)
	}
}

// FindLine returns the index of the line for (productID, variant), or -1.
func (c *Cart) FindLine(productID string, variant VariantKey) int {
	for i, line := range c.Items {
		if line.ProductID == productID && line.Variant == variant {
			return i
		}
	}
	return -1
}
