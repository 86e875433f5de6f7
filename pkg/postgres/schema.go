package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#3B82F6',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		unit TEXT NOT NULL DEFAULT 'un',
		category_id UUID NULL REFERENCES categories(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id UUID PRIMARY KEY,
		supplier_name TEXT NOT NULL,
		supplier_cnpj TEXT NULL,
		purchase_date TIMESTAMPTZ NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_method TEXT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_purchase_date ON purchases(purchase_date)`,
	`CREATE TABLE IF NOT EXISTS purchase_items (
		id UUID PRIMARY KEY,
		purchase_id UUID NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		quantity NUMERIC(12,3) NOT NULL DEFAULT 1,
		unit TEXT NOT NULL DEFAULT 'un',
		unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		category_id UUID NULL REFERENCES categories(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase_id ON purchase_items(purchase_id)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_product_id ON purchase_items(product_id)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		id UUID PRIMARY KEY,
		file_url TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		file_type TEXT NOT NULL,
		ocr_status TEXT NOT NULL DEFAULT 'pending',
		ocr_result JSONB NULL,
		processed_at TIMESTAMPTZ NULL,
		purchase_id UUID NULL REFERENCES purchases(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the application tables when they are missing.
func EnsureSchema(ctx context.Context, db Querier, logger *zap.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("Schema initialized", zap.Int("statements", len(schemaStatements)))
	return nil
}
