package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCategoryColor = "#3B82F6"
	UncategorizedName    = "Sem categoria"
	UncategorizedColor   = "#gray"
)

type Category struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
