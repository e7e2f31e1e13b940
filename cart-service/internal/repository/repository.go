package repository

import (
	"context"

	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
)

// CartRepository defines the interface for cart data operations.
// Every method is a single-document update, so concurrent mutations for the
// same user are last-write-wins per field.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem adds quantity to an existing line or appends a new one,
	// creating the cart on first use.
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	SetTotal(ctx context.Context, userID string, totalMinor int64) error
	// ClearCart empties the items and zeroes the total but keeps the document.
	ClearCart(ctx context.Context, userID string) error
}
