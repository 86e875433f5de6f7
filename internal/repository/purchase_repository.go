package repository

import (
	"context"

	"purchase-control/internal/models"
	"purchase-control/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var purchaseColumns = []string{
	"p.id", "p.supplier_name", "p.supplier_cnpj", "p.purchase_date", "p.total_amount",
	"p.payment_method", "p.status", "p.created_at", "p.updated_at",
}

var itemColumns = []string{
	"pi.id", "pi.purchase_id", "pi.product_id", "pi.product_name", "pi.quantity", "pi.unit",
	"pi.unit_price", "pi.total_price", "pi.discount_amount", "pi.category_id", "pi.created_at",
}

type PurchaseRepository struct {
	db     postgres.Querier
	logger *zap.Logger
}

func NewPurchaseRepository(db postgres.Querier, logger *zap.Logger) *PurchaseRepository {
	return &PurchaseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the purchase header on q.
func (r *PurchaseRepository) Create(ctx context.Context, q postgres.Querier, p *models.Purchase) error {
	query := squirrel.Insert("purchases").
		Columns("id", "supplier_name", "supplier_cnpj", "purchase_date", "total_amount", "payment_method", "status", "created_at", "updated_at").
		Values(p.ID, p.SupplierName, p.SupplierCNPJ, p.PurchaseDate, p.TotalAmount, p.PaymentMethod, p.Status, p.CreatedAt, p.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, sql, args...)
	return err
}

// CreateItem inserts one purchase line on q.
func (r *PurchaseRepository) CreateItem(ctx context.Context, q postgres.Querier, item *models.PurchaseItem) error {
	query := squirrel.Insert("purchase_items").
		Columns("id", "purchase_id", "product_id", "product_name", "quantity", "unit", "unit_price", "total_price", "discount_amount", "category_id", "created_at").
		Values(item.ID, item.PurchaseID, item.ProductID, item.ProductName, item.Quantity, item.Unit, item.UnitPrice, item.TotalPrice, item.DiscountAmount, item.CategoryID, item.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, sql, args...)
	return err
}

// List returns every purchase, newest first, with its item count.
func (r *PurchaseRepository) List(ctx context.Context) ([]*models.Purchase, error) {
	columns := append(append([]string{}, purchaseColumns...),
		"(SELECT COUNT(*) FROM purchase_items pi WHERE pi.purchase_id = p.id) AS item_count")

	query := squirrel.Select(columns...).
		From("purchases p").
		OrderBy("p.purchase_date DESC").
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

	purchases := make([]*models.Purchase, 0)
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(
			&p.ID, &p.SupplierName, &p.SupplierCNPJ, &p.PurchaseDate, &p.TotalAmount,
			&p.PaymentMethod, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.ItemCount,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, &p)
	}

	return purchases, rows.Err()
}

// GetByID returns a purchase with its items.
func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	query := squirrel.Select(purchaseColumns...).
		From("purchases p").
		Where(squirrel.Eq{"p.id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Purchase
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.SupplierName, &p.SupplierCNPJ, &p.PurchaseDate, &p.TotalAmount,
		&p.PaymentMethod, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	itemsQuery := squirrel.Select(itemColumns...).
		From("purchase_items pi").
		Where(squirrel.Eq{"pi.purchase_id": id}).
		OrderBy("pi.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = itemsQuery.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	p.Items = make([]*models.PurchaseItem, 0)
	for rows.Next() {
		var item models.PurchaseItem
		if err := scanItem(rows, &item); err != nil {
			return nil, err
		}
		p.Items = append(p.Items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	p.ItemCount = len(p.Items)

	return &p, nil
}

// Delete removes a purchase; its items go with it through the foreign key.
func (r *PurchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("purchases").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner, item *models.PurchaseItem, extra ...any) error {
	dest := []any{
		&item.ID, &item.PurchaseID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Unit,
		&item.UnitPrice, &item.TotalPrice, &item.DiscountAmount, &item.CategoryID, &item.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}
