package domain

import "time"

// Cart is the stored per-user cart. TotalMinor is a cached value and is
// recomputed from catalog prices on every read.
type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string     `bson:"user_id" json:"user_id"`
	Items      []CartItem `bson:"items" json:"items"`
	TotalMinor int64      `bson:"total_minor" json:"total_minor"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

func (c *Cart) Item(productID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
