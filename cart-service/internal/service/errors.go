package service

import (
	"errors"

	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/repository"
)

var (
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = repository.ErrItemNotFound
	ErrCartNotFound    = repository.ErrCartNotFound
)
