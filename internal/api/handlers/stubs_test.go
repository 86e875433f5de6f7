package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"purchase-control/internal/dto"
	"purchase-control/internal/service"

	"github.com/google/uuid"
)

var errStub = errors.New("stub: not configured")

type stubReceipts struct {
	upload func(fileName, contentType string, data []byte) (*dto.UploadResponse, error)
	result func(id uuid.UUID) (json.RawMessage, error)
}

func (s *stubReceipts) Upload(ctx context.Context, fileName, contentType string, data []byte) (*dto.UploadResponse, error) {
	if s.upload == nil {
		return nil, errStub
	}
	return s.upload(fileName, contentType, data)
}

func (s *stubReceipts) Result(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	if s.result == nil {
		return nil, errStub
	}
	return s.result(id)
}

type stubOCR struct {
	process func(id uuid.UUID) (*dto.OCRData, error)
}

func (s *stubOCR) Process(ctx context.Context, id uuid.UUID) (*dto.OCRData, error) {
	if s.process == nil {
		return nil, errStub
	}
	return s.process(id)
}

type stubStreamer struct {
	body     string
	err      error
	messages []dto.ChatMessage
	ctx      context.Context
}

func (s *stubStreamer) OpenChatStream(ctx context.Context, messages []dto.ChatMessage, maxTokens int) (io.ReadCloser, error) {
	s.ctx = ctx
	s.messages = messages
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

type stubPurchases struct {
	save   func(req *dto.SavePurchaseRequest) (*dto.SavePurchaseResponse, error)
	list   func() ([]dto.PurchaseResponse, error)
	get    func(id uuid.UUID) (*dto.PurchaseResponse, error)
	delete func(id uuid.UUID) error
}

func (s *stubPurchases) Save(ctx context.Context, req *dto.SavePurchaseRequest) (*dto.SavePurchaseResponse, error) {
	if s.save == nil {
		return nil, errStub
	}
	return s.save(req)
}

func (s *stubPurchases) List(ctx context.Context) ([]dto.PurchaseResponse, error) {
	if s.list == nil {
		return nil, errStub
	}
	return s.list()
}

func (s *stubPurchases) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	if s.get == nil {
		return nil, errStub
	}
	return s.get(id)
}

func (s *stubPurchases) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete == nil {
		return errStub
	}
	return s.delete(id)
}

type stubCategories struct {
	create func(req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	assign func(productID uuid.UUID, categoryID *uuid.UUID) (*dto.ProductResponse, error)
}

func (s *stubCategories) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	return []dto.CategoryResponse{}, nil
}

func (s *stubCategories) Create(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if s.create == nil {
		return nil, errStub
	}
	return s.create(req)
}

func (s *stubCategories) Update(ctx context.Context, id uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	return nil, errStub
}

func (s *stubCategories) Delete(ctx context.Context, id uuid.UUID) error {
	return errStub
}

func (s *stubCategories) AssignProduct(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) (*dto.ProductResponse, error) {
	if s.assign == nil {
		return nil, errStub
	}
	return s.assign(productID, categoryID)
}

type stubReports struct {
	dashboard func(period int) (*dto.DashboardStats, error)
	history   func(name string, limit int) (*dto.ProductHistory, error)
	period    func(q service.PeriodQuery) (*dto.PeriodReport, error)
	export    func(q service.PeriodQuery) ([]byte, error)
	summary   func(kind string, compare bool) (*dto.SummaryReport, error)
}

func (s *stubReports) DashboardStats(ctx context.Context, periodDays int) (*dto.DashboardStats, error) {
	if s.dashboard == nil {
		return nil, errStub
	}
	return s.dashboard(periodDays)
}

func (s *stubReports) CategoryDetails(ctx context.Context, categoryID uuid.UUID, periodDays int) (*dto.CategoryDetails, error) {
	return nil, errStub
}

func (s *stubReports) ProductHistory(ctx context.Context, productName string, limit int) (*dto.ProductHistory, error) {
	if s.history == nil {
		return nil, errStub
	}
	return s.history(productName, limit)
}

func (s *stubReports) ProductSearch(ctx context.Context, query string, limit int) (*dto.ProductSearchResult, error) {
	return nil, errStub
}

func (s *stubReports) PurchasesByPeriod(ctx context.Context, q service.PeriodQuery) (*dto.PeriodReport, error) {
	if s.period == nil {
		return nil, errStub
	}
	return s.period(q)
}

func (s *stubReports) ExportPeriodXLSX(ctx context.Context, q service.PeriodQuery) ([]byte, error) {
	if s.export == nil {
		return nil, errStub
	}
	return s.export(q)
}

func (s *stubReports) Summary(ctx context.Context, kind string, compare bool) (*dto.SummaryReport, error) {
	if s.summary == nil {
		return nil, errStub
	}
	return s.summary(kind, compare)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}
