package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
	"purchase-control/internal/repository"
	"purchase-control/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FileStore keeps uploaded receipt files.
type FileStore interface {
	Put(ctx context.Context, data []byte, fileName, contentType string) (string, error)
	SignedReadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, result json.RawMessage) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
	LinkPurchase(ctx context.Context, q postgres.Querier, receiptID, purchaseID uuid.UUID) error
}

type PurchaseRepository interface {
	Create(ctx context.Context, q postgres.Querier, p *models.Purchase) error
	CreateItem(ctx context.Context, q postgres.Querier, item *models.PurchaseItem) error
	List(ctx context.Context) ([]*models.Purchase, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Resolve(ctx context.Context, q postgres.Querier, p *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Product, error)
	AssignCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) (*models.Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReportRepository interface {
	FindPurchases(ctx context.Context, f repository.PurchaseFilter) ([]*models.Purchase, error)
	FindItemsByProductName(ctx context.Context, name string, limit int) ([]*models.PurchaseItem, error)
	FindItemsByProducts(ctx context.Context, productIDs []uuid.UUID, from, to time.Time) ([]*models.PurchaseItem, error)
	SearchProductNames(ctx context.Context, q string, limit int) ([]repository.ProductNameUsage, error)
}

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Completer performs JSON-mode completions for extraction.
type Completer interface {
	CompleteJSON(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatStreamer opens a streamed chat completion.
type ChatStreamer interface {
	OpenChatStream(ctx context.Context, messages []dto.ChatMessage, maxTokens int) (io.ReadCloser, error)
}

// PoolTx adapts a postgres.DB to TxRunner.
type PoolTx struct {
	DB postgres.DB
}

func (p PoolTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return postgres.WithTx(ctx, p.DB, fn)
}
