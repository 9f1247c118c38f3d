package domain

import "time"

// CartLine is one product's presence in the bill being built.
// Name, Unit and Price are a snapshot taken when the line was created.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Unit      Unit    `json:"unit"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Amount    float64 `json:"amount"`
}

// Bill is the read-only result of a checkout
type Bill struct {
	ID        string     `json:"id"`
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
}
