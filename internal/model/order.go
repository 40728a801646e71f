package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderProductItem is an embedded order line. PricePerUnit is the product
// price copied at the time the line was written, so later catalog price
// changes never alter historical orders.
type OrderProductItem struct {
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	PricePerUnit float64   `json:"price_per_unit"`
}

// Order is a client order. Total is derived from the product list and is
// never supplied by callers.
type Order struct {
	ID          uuid.UUID          `json:"id"`
	ClientName  string             `json:"client_name"`
	ProductList []OrderProductItem `json:"product_list"`
	Total       float64            `json:"total"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
