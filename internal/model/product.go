package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. SKU is globally unique, enforced by a
// database constraint in addition to the service-level pre-check.
type Product struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Sku       string     `json:"sku"`
	Price     float64    `json:"price"`
	ImageURL  *string    `json:"image_url"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
