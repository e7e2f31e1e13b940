package domain

// PricedCart is the cart as served by the cart service's GET /cart.
type PricedCart struct {
	Items []PricedLine `json:"items"`
	Total float64      `json:"total"`
}

type PricedLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   *CatalogProduct `json:"product"`
}

type CatalogProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}
