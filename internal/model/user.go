package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can authenticate against the API.
// Password holds the bcrypt hash, never the plain text. Token is the
// last issued bearer token, persisted so a login can be audited.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Password  string     `json:"-"`
	Token     *string    `json:"-"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
