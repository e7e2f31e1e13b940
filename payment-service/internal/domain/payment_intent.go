package domain

import (
	"errors"
	"time"

	"github.com/sanketp1/ecommerce-microservices/pkg/money"
)

var ErrUnpricedItem = errors.New("cart item has no catalog price")

// SnapshotItem is a cart line frozen at checkout time with its price.
type SnapshotItem struct {
	ProductID      string `bson:"product_id" json:"product_id"`
	Name           string `bson:"name" json:"name"`
	ImageURL       string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Quantity       int    `bson:"quantity" json:"quantity"`
	UnitPriceMinor int64  `bson:"unit_price_minor" json:"-"`
	SubtotalMinor  int64  `bson:"subtotal_minor" json:"-"`
}

// PaymentIntent records one checkout attempt registered with the payment
// processor. Items and Amount never change after creation.
type PaymentIntent struct {
	ID                string         `bson:"_id"`
	UserID            string         `bson:"user_id"`
	ExternalOrderID   string         `bson:"external_order_id"`
	ExternalPaymentID string         `bson:"external_payment_id,omitempty"`
	IdempotencyKey    string         `bson:"idempotency_key,omitempty"`
	Amount            int64          `bson:"amount"`
	Currency          string         `bson:"currency"`
	Status            IntentStatus   `bson:"status"`
	Items             []SnapshotItem `bson:"cart_items"`
	CreatedAt         time.Time      `bson:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at"`
}

// NewSnapshot deep-copies a priced cart into snapshot items and returns the
// amount to charge in minor units. Every line must carry a product.
func NewSnapshot(cart *PricedCart) ([]SnapshotItem, int64, error) {
	items := make([]SnapshotItem, 0, len(cart.Items))
	var amount int64

	for _, line := range cart.Items {
		if line.Product == nil {
			return nil, 0, ErrUnpricedItem
		}
		unit := money.ToMinor(line.Product.Price)
		subtotal := money.Multiply(unit, line.Quantity)

		items = append(items, SnapshotItem{
			ProductID:      line.ProductID,
			Name:           line.Product.Name,
			ImageURL:       line.Product.ImageURL,
			Quantity:       line.Quantity,
			UnitPriceMinor: unit,
			SubtotalMinor:  subtotal,
		})
		amount += subtotal
	}

	return items, amount, nil
}
