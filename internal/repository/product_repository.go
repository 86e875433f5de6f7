package repository

import (
	"context"

	"purchase-control/internal/models"
	"purchase-control/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var productColumns = []string{"id", "name", "normalized_name", "unit", "category_id", "created_at", "updated_at"}

type ProductRepository struct {
	db     postgres.Querier
	logger *zap.Logger
}

func NewProductRepository(db postgres.Querier, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// Resolve returns the product stored under p.NormalizedName, inserting p
// first when no such product exists. Concurrent callers converge on the same
// row through the unique normalized_name constraint.
func (r *ProductRepository) Resolve(ctx context.Context, q postgres.Querier, p *models.Product) (*models.Product, error) {
	insert := squirrel.Insert("products").
		Columns("id", "name", "normalized_name", "unit", "category_id", "created_at", "updated_at").
		Values(p.ID, p.Name, p.NormalizedName, p.Unit, p.CategoryID, p.CreatedAt, p.UpdatedAt).
		Suffix("ON CONFLICT (normalized_name) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := insert.ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return nil, err
	}

	return r.getOne(ctx, q, squirrel.Eq{"normalized_name": p.NormalizedName})
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.getOne(ctx, r.db, squirrel.Eq{"id": id})
}

func (r *ProductRepository) getOne(ctx context.Context, q postgres.Querier, where squirrel.Eq) (*models.Product, error) {
	query := squirrel.Select(productColumns...).
		From("products").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = q.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.Name, &p.NormalizedName, &p.Unit, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Product, error) {
	query := squirrel.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"category_id": categoryID}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.NormalizedName, &p.Unit, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

// AssignCategory sets or clears (nil) the category of a product. Items
// already recorded keep the category they were saved with.
func (r *ProductRepository) AssignCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) (*models.Product, error) {
	query := squirrel.Update("products").
		Set("category_id", categoryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, normalized_name, unit, category_id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.Name, &p.NormalizedName, &p.Unit, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
