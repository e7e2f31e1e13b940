package domain

import (
	"time"

	"github.com/sanketp1/ecommerce-microservices/pkg/money"
)

type OrderStatus string

const OrderStatusConfirmed OrderStatus = "confirmed"

type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "paid"

// Order is created once per completed payment intent and is not modified
// afterwards by this service.
type Order struct {
	ID              string         `bson:"_id"`
	UserID          string         `bson:"user_id"`
	IntentID        string         `bson:"intent_id"`
	ExternalOrderID string         `bson:"external_order_id"`
	PaymentID       string         `bson:"payment_id"`
	Items           []SnapshotItem `bson:"items"`
	TotalMinor      int64          `bson:"total_minor"`
	Currency        string         `bson:"currency"`
	PaymentStatus   PaymentStatus  `bson:"payment_status"`
	Status          OrderStatus    `bson:"status"`
	CreatedAt       time.Time      `bson:"created_at"`
}

// NewOrder materializes the order for a verified intent. Items are copied
// so the order never shares backing arrays with the intent.
func NewOrder(id string, intent *PaymentIntent, paymentID string, now time.Time) *Order {
	return &Order{
		ID:              id,
		UserID:          intent.UserID,
		IntentID:        intent.ID,
		ExternalOrderID: intent.ExternalOrderID,
		PaymentID:       paymentID,
		Items:           append([]SnapshotItem(nil), intent.Items...),
		TotalMinor:      intent.Amount,
		Currency:        intent.Currency,
		PaymentStatus:   PaymentStatusPaid,
		Status:          OrderStatusConfirmed,
		CreatedAt:       now,
	}
}

type OrderItemView struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderView struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Items         []OrderItemView `json:"items"`
	Total         float64         `json:"total"`
	Currency      string          `json:"currency"`
	PaymentID     string          `json:"payment_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o *Order) View() OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
			Price:     money.FromMinor(it.UnitPriceMinor),
			Subtotal:  money.FromMinor(it.SubtotalMinor),
		})
	}
	return OrderView{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		Total:         money.FromMinor(o.TotalMinor),
		Currency:      o.Currency,
		PaymentID:     o.PaymentID,
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
}
