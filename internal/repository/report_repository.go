package repository

import (
	"context"
	"time"

	"purchase-control/internal/models"
	"purchase-control/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseFilter narrows FindPurchases. Supplier applies to purchases;
// CategoryName and ProductName only filter the items loaded with them.
type PurchaseFilter struct {
	From         *time.Time
	To           *time.Time
	Supplier     string
	CategoryName string
	ProductName  string
}

// ProductNameUsage is how often a receipt-level product name was bought.
type ProductNameUsage struct {
	Name          string
	Count         int
	TotalQuantity decimal.Decimal
}

// ReportRepository loads rows for reporting. Aggregation happens in the
// service so grouping keys stay the stored display strings.
type ReportRepository struct {
	db     postgres.Querier
	logger *zap.Logger
}

func NewReportRepository(db postgres.Querier, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// FindPurchases returns matching purchases newest first, each with its
// (filtered) items and their categories.
func (r *ReportRepository) FindPurchases(ctx context.Context, f PurchaseFilter) ([]*models.Purchase, error) {
	query := squirrel.Select(purchaseColumns...).
		From("purchases p").
		OrderBy("p.purchase_date DESC").
		PlaceholderFormat(squirrel.Dollar)

	if f.From != nil {
		query = query.Where(squirrel.GtOrEq{"p.purchase_date": *f.From})
	}
	if f.To != nil {
		query = query.Where(squirrel.LtOrEq{"p.purchase_date": *f.To})
	}
	if f.Supplier != "" {
		query = query.Where(squirrel.ILike{"p.supplier_name": containsPattern(f.Supplier)})
	}

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
	byID := make(map[uuid.UUID]*models.Purchase)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(
			&p.ID, &p.SupplierName, &p.SupplierCNPJ, &p.PurchaseDate, &p.TotalAmount,
			&p.PaymentMethod, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Items = make([]*models.PurchaseItem, 0)
		purchases = append(purchases, &p)
		byID[p.ID] = &p
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return purchases, nil
	}

	items := squirrel.Select(append(append([]string{}, itemColumns...), "c.id", "c.name", "c.color")...).
		From("purchase_items pi").
		LeftJoin("categories c ON c.id = pi.category_id").
		Where(squirrel.Eq{"pi.purchase_id": ids}).
		OrderBy("pi.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if f.CategoryName != "" {
		items = items.Where(squirrel.ILike{"c.name": containsPattern(f.CategoryName)})
	}
	if f.ProductName != "" {
		items = items.Where(squirrel.ILike{"pi.product_name": containsPattern(f.ProductName)})
	}

	sql, args, err = items.ToSql()
	if err != nil {
		return nil, err
	}

	itemRows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.PurchaseItem
		var cat nullableCategory
		if err := scanItem(itemRows, &item, &cat.id, &cat.name, &cat.color); err != nil {
			return nil, err
		}
		item.Category = cat.model()
		if p, ok := byID[item.PurchaseID]; ok {
			p.Items = append(p.Items, &item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for _, p := range purchases {
		p.ItemCount = len(p.Items)
	}
	return purchases, nil
}

// FindItemsByProductName returns items whose product name contains name,
// most recent purchase first, with purchase and category attached.
func (r *ReportRepository) FindItemsByProductName(ctx context.Context, name string, limit int) ([]*models.PurchaseItem, error) {
	query := r.itemWithPurchase().
		Where(squirrel.ILike{"pi.product_name": containsPattern(name)}).
		OrderBy("p.purchase_date DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return r.queryItems(ctx, query)
}

// FindItemsByProducts returns the items of the given products bought
// within [from, to].
func (r *ReportRepository) FindItemsByProducts(ctx context.Context, productIDs []uuid.UUID, from, to time.Time) ([]*models.PurchaseItem, error) {
	if len(productIDs) == 0 {
		return []*models.PurchaseItem{}, nil
	}
	query := r.itemWithPurchase().
		Where(squirrel.Eq{"pi.product_id": productIDs}).
		Where(squirrel.GtOrEq{"p.purchase_date": from}).
		Where(squirrel.LtOrEq{"p.purchase_date": to}).
		OrderBy("p.purchase_date DESC")
	return r.queryItems(ctx, query)
}

// SearchProductNames groups items by product name, most frequent first.
// An empty q matches every name.
func (r *ReportRepository) SearchProductNames(ctx context.Context, q string, limit int) ([]ProductNameUsage, error) {
	query := squirrel.Select("product_name", "COUNT(*)", "COALESCE(SUM(quantity), 0)").
		From("purchase_items").
		GroupBy("product_name").
		OrderBy("COUNT(*) DESC", "product_name ASC").
		PlaceholderFormat(squirrel.Dollar)
	if q != "" {
		query = query.Where(squirrel.ILike{"product_name": containsPattern(q)})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usages := make([]ProductNameUsage, 0)
	for rows.Next() {
		var u ProductNameUsage
		if err := rows.Scan(&u.Name, &u.Count, &u.TotalQuantity); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

func (r *ReportRepository) itemWithPurchase() squirrel.SelectBuilder {
	columns := append(append([]string{}, itemColumns...),
		"p.purchase_date", "p.supplier_name", "p.supplier_cnpj", "c.id", "c.name", "c.color")
	return squirrel.Select(columns...).
		From("purchase_items pi").
		Join("purchases p ON p.id = pi.purchase_id").
		LeftJoin("categories c ON c.id = pi.category_id").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *ReportRepository) queryItems(ctx context.Context, query squirrel.SelectBuilder) ([]*models.PurchaseItem, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.PurchaseItem, 0)
	for rows.Next() {
		var item models.PurchaseItem
		purchase := &models.Purchase{}
		var cat nullableCategory
		if err := scanItem(rows, &item,
			&purchase.PurchaseDate, &purchase.SupplierName, &purchase.SupplierCNPJ,
			&cat.id, &cat.name, &cat.color,
		); err != nil {
			return nil, err
		}
		purchase.ID = item.PurchaseID
		item.Purchase = purchase
		item.Category = cat.model()
		items = append(items, &item)
	}
	return items, rows.Err()
}

// nullableCategory receives the columns of a LEFT JOIN on categories.
type nullableCategory struct {
	id    *uuid.UUID
	name  *string
	color *string
}

func (c nullableCategory) model() *models.Category {
	if c.id == nil {
		return nil
	}
	cat := &models.Category{ID: *c.id}
	if c.name != nil {
		cat.Name = *c.name
	}
	if c.color != nil {
		cat.Color = *c.color
	}
	return cat
}
