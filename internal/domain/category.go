package domain

import "time"

// Category statuses.
const (
	CategoryStatusInactive = 0
	CategoryStatusActive   = 1
)

// Category groups products in the catalog.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
