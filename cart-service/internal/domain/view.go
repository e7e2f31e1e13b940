package domain

import "github.com/sanketp1/ecommerce-microservices/pkg/money"

// CartLine is a cart item joined with its current catalog entry. Product is
// nil when the catalog lookup failed.
type CartLine struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product"`
}

type CartView struct {
	Items      []CartLine `json:"items"`
	Total      float64    `json:"total"`
	TotalMinor int64      `json:"-"`
}

// NewCartView prices lines, leaving unpriced ones out of the total.
func NewCartView(lines []CartLine) *CartView {
	if lines == nil {
		lines = []CartLine{}
	}
	var total int64
	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		total += money.Multiply(l.Product.PriceMinor(), l.Quantity)
	}
	return &CartView{Items: lines, Total: money.FromMinor(total), TotalMinor: total}
}
