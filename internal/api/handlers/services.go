package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"purchase-control/internal/dto"
	"purchase-control/internal/service"

	"github.com/google/uuid"
)

type ReceiptService interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (*dto.UploadResponse, error)
	Result(ctx context.Context, receiptID uuid.UUID) (json.RawMessage, error)
}

type OCRService interface {
	Process(ctx context.Context, receiptID uuid.UUID) (*dto.OCRData, error)
}

type ChatService interface {
	Open(ctx context.Context, req *dto.ChatRequest) (io.ReadCloser, error)
	Relay(upstream io.Reader, w *bufio.Writer) error
}

type PurchaseService interface {
	Save(ctx context.Context, req *dto.SavePurchaseRequest) (*dto.SavePurchaseResponse, error)
	List(ctx context.Context) ([]dto.PurchaseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AssignProduct(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) (*dto.ProductResponse, error)
}

type ReportService interface {
	DashboardStats(ctx context.Context, periodDays int) (*dto.DashboardStats, error)
	CategoryDetails(ctx context.Context, categoryID uuid.UUID, periodDays int) (*dto.CategoryDetails, error)
	ProductHistory(ctx context.Context, productName string, limit int) (*dto.ProductHistory, error)
	ProductSearch(ctx context.Context, query string, limit int) (*dto.ProductSearchResult, error)
	PurchasesByPeriod(ctx context.Context, q service.PeriodQuery) (*dto.PeriodReport, error)
	ExportPeriodXLSX(ctx context.Context, q service.PeriodQuery) ([]byte, error)
	Summary(ctx context.Context, kind string, compare bool) (*dto.SummaryReport, error)
}
