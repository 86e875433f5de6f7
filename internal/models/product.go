package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultUnit = "un"

// Product is the deduplicated identity behind purchase items, keyed by
// NormalizedName.
type Product struct {
	ID             uuid.UUID  `db:"id"`
	Name           string     `db:"name"`
	NormalizedName string     `db:"normalized_name"`
	Unit           string     `db:"unit"`
	CategoryID     *uuid.UUID `db:"category_id"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
