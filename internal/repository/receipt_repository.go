package repository

import (
	"context"
	"encoding/json"

	"purchase-control/internal/models"
	"purchase-control/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var receiptColumns = []string{
	"id", "file_url", "file_name", "file_size", "file_type", "ocr_status",
	"ocr_result", "processed_at", "purchase_id", "created_at", "updated_at",
}

type ReceiptRepository struct {
	db     postgres.Querier
	logger *zap.Logger
}

func NewReceiptRepository(db postgres.Querier, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	query := squirrel.Insert("receipts").
		Columns("id", "file_url", "file_name", "file_size", "file_type", "ocr_status", "created_at", "updated_at").
		Values(receipt.ID, receipt.FileURL, receipt.FileName, receipt.FileSize, receipt.FileType, receipt.OCRStatus, receipt.CreatedAt, receipt.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := squirrel.Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.Receipt
	var result []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &rec.FileURL, &rec.FileName, &rec.FileSize, &rec.FileType, &rec.OCRStatus,
		&result, &rec.ProcessedAt, &rec.PurchaseID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if len(result) > 0 {
		rec.OCRResult = json.RawMessage(result)
	}

	return &rec, nil
}

// MarkProcessing moves a pending receipt to processing. A receipt left in
// processing by an interrupted run may be picked up again; terminal
// receipts are rejected with ErrInvalidTransition.
func (r *ReceiptRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Update("receipts").
		Set("ocr_status", models.OCRStatusProcessing).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"ocr_status": []string{string(models.OCRStatusPending), string(models.OCRStatusProcessing)}}).
		PlaceholderFormat(squirrel.Dollar)

	return r.execTransition(ctx, query)
}

func (r *ReceiptRepository) MarkCompleted(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	return r.finish(ctx, id, models.OCRStatusCompleted, result)
}

// MarkError records the failure message as {"error": message}.
func (r *ReceiptRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	result, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return err
	}
	return r.finish(ctx, id, models.OCRStatusError, result)
}

func (r *ReceiptRepository) finish(ctx context.Context, id uuid.UUID, status models.OCRStatus, result json.RawMessage) error {
	query := squirrel.Update("receipts").
		Set("ocr_status", status).
		Set("ocr_result", []byte(result)).
		Set("processed_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "ocr_status": string(models.OCRStatusProcessing)}).
		PlaceholderFormat(squirrel.Dollar)

	return r.execTransition(ctx, query)
}

func (r *ReceiptRepository) execTransition(ctx context.Context, query squirrel.UpdateBuilder) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// LinkPurchase sets the back-reference from a receipt to the purchase saved
// from it. It runs on q so it can share the ingestion transaction.
func (r *ReceiptRepository) LinkPurchase(ctx context.Context, q postgres.Querier, receiptID, purchaseID uuid.UUID) error {
	query := squirrel.Update("receipts").
		Set("purchase_id", purchaseID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": receiptID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
