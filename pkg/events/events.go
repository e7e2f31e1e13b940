// Package events defines the messages exchanged between services over Kafka.
package events

import "time"

const (
	TopicOrderConfirmed = "order.confirmed"
	TypeOrderConfirmed  = "order.confirmed"
	HeaderEventType     = "event_type"
)

// OrderConfirmed is emitted once per committed order.
type OrderConfirmed struct {
	EventID         string    `json:"event_id" bson:"event_id"`
	OrderID         string    `json:"order_id" bson:"order_id"`
	UserID          string    `json:"user_id" bson:"user_id"`
	ExternalOrderID string    `json:"external_order_id" bson:"external_order_id"`
	PaymentID       string    `json:"payment_id" bson:"payment_id"`
	TotalMinor      int64     `json:"total_minor" bson:"total_minor"`
	Currency        string    `json:"currency" bson:"currency"`
	ConfirmedAt     time.Time `json:"confirmed_at" bson:"confirmed_at"`
}
