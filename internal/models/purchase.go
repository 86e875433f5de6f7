package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PurchaseStatusCompleted = "completed"
	UnknownSupplier         = "Fornecedor Desconhecido"
)

// Purchase is a user-confirmed transaction. TotalAmount comes from the
// extraction and is not recomputed from the items.
type Purchase struct {
	ID            uuid.UUID       `db:"id"`
	SupplierName  string          `db:"supplier_name"`
	SupplierCNPJ  *string         `db:"supplier_cnpj"`
	PurchaseDate  time.Time       `db:"purchase_date"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	PaymentMethod *string         `db:"payment_method"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`

	Items     []*PurchaseItem `db:"-"`
	ItemCount int             `db:"-"`
}

// PurchaseItem keeps ProductName as it read on the receipt, independent of
// later renames of the Product.
type PurchaseItem struct {
	ID             uuid.UUID       `db:"id"`
	PurchaseID     uuid.UUID       `db:"purchase_id"`
	ProductID      uuid.UUID       `db:"product_id"`
	ProductName    string          `db:"product_name"`
	Quantity       decimal.Decimal `db:"quantity"`
	Unit           string          `db:"unit"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	TotalPrice     decimal.Decimal `db:"total_price"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	CategoryID     *uuid.UUID      `db:"category_id"`
	CreatedAt      time.Time       `db:"created_at"`

	Category *Category `db:"-"`
	Purchase *Purchase `db:"-"`
}
