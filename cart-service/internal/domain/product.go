package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sanketp1/ecommerce-microservices/pkg/money"
)

// Product is the catalog's view of a product, as returned by GET /products/{id}.
type Product struct {
	ID          ProductID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Stock       int       `json:"stock,omitempty"`
}

func (p Product) PriceMinor() int64 {
	return money.ToMinor(p.Price)
}

// ProductID accepts both JSON strings and JSON integers; the catalog and
// older clients send numeric ids.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("product id must be a string or integer: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}
