package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
	"purchase-control/internal/repository"
	"purchase-control/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultProductName = "Produto"
	msgIncompleteData  = "Dados incompletos"
	msgPurchaseMissing = "Compra não encontrada"
)

var purchaseDateLayouts = []string{
	canonicalDateForm,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// PurchaseService records confirmed extractions and serves saved purchases.
type PurchaseService struct {
	tx        TxRunner
	purchases PurchaseRepository
	products  ProductRepository
	receipts  ReceiptRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewPurchaseService(
	tx TxRunner,
	purchases PurchaseRepository,
	products ProductRepository,
	receipts ReceiptRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		tx:        tx,
		purchases: purchases,
		products:  products,
		receipts:  receipts,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Save persists a confirmed extraction as one purchase. The purchase, the
// receipt link, product resolution and every item are written in a single
// transaction; any failure leaves nothing behind.
func (s *PurchaseService) Save(ctx context.Context, req *dto.SavePurchaseRequest) (*dto.SavePurchaseResponse, error) {
	if req == nil || req.OCRData == nil {
		return nil, newUserError(ErrValidation, msgIncompleteData)
	}
	receiptID, err := uuid.Parse(req.ReceiptID)
	if err != nil {
		return nil, newUserError(ErrValidation, msgIncompleteData)
	}

	data := req.OCRData
	now := s.now()
	purchase := &models.Purchase{
		ID:            uuid.New(),
		SupplierName:  orDefault(data.SupplierName, models.UnknownSupplier),
		SupplierCNPJ:  nonEmpty(data.SupplierCNPJ),
		PurchaseDate:  parsePurchaseDate(data.PurchaseDate, now),
		TotalAmount:   decimal.NewFromFloat(data.TotalAmount).Round(2),
		PaymentMethod: nonEmpty(data.PaymentMethod),
		Status:        models.PurchaseStatusCompleted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.purchases.Create(ctx, tx, purchase); err != nil {
			return err
		}
		if err := s.receipts.LinkPurchase(ctx, tx, receiptID, purchase.ID); err != nil {
			return err
		}

		for _, line := range data.Items {
			name := orDefault(sanitizeUTF8(line.Name), DefaultProductName)
			normalized := NormalizeProductName(name)
			if normalized == "" {
				normalized = NormalizeProductName(DefaultProductName)
			}

			product, err := s.products.Resolve(ctx, tx, &models.Product{
				ID:             uuid.New(),
				Name:           name,
				NormalizedName: normalized,
				Unit:           models.DefaultUnit,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return err
			}

			quantity := line.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			item := &models.PurchaseItem{
				ID:             uuid.New(),
				PurchaseID:     purchase.ID,
				ProductID:      product.ID,
				ProductName:    name,
				Quantity:       decimal.NewFromFloat(quantity).Round(3),
				Unit:           orDefault(product.Unit, models.DefaultUnit),
				UnitPrice:      decimal.NewFromFloat(line.UnitPrice).Round(2),
				TotalPrice:     decimal.NewFromFloat(line.TotalPrice).Round(2),
				DiscountAmount: decimal.Zero,
				CategoryID:     product.CategoryID,
				CreatedAt:      now,
			}
			if err := s.purchases.CreateItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newUserError(ErrNotFound, msgReceiptNotFound)
		}
		s.logger.Error("Failed to save purchase",
			zap.String("receipt_id", receiptID.String()),
			zap.Error(err),
		)
		return nil, WrapError("purchase.save", ErrPersistence, err)
	}

	s.metrics.RecordPurchaseSaved()
	s.logger.Info("Purchase saved",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("receipt_id", receiptID.String()),
		zap.Int("items", len(data.Items)),
		zap.Int("chat_messages", len(req.Messages)),
	)

	return &dto.SavePurchaseResponse{
		Success:    true,
		PurchaseID: purchase.ID.String(),
	}, nil
}

func (s *PurchaseService) List(ctx context.Context) ([]dto.PurchaseResponse, error) {
	purchases, err := s.purchases.List(ctx)
	if err != nil {
		return nil, WrapError("purchase.list", ErrPersistence, err)
	}

	out := make([]dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p))
	}
	return out, nil
}

func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	purchase, err := s.purchases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newUserError(ErrNotFound, msgPurchaseMissing)
		}
		return nil, WrapError("purchase.get", ErrPersistence, err)
	}

	resp := toPurchaseResponse(purchase)
	resp.Items = make([]dto.PurchaseItemResponse, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		resp.Items = append(resp.Items, dto.PurchaseItemResponse{
			ID:             item.ID.String(),
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			Quantity:       item.Quantity.InexactFloat64(),
			Unit:           item.Unit,
			UnitPrice:      item.UnitPrice.InexactFloat64(),
			TotalPrice:     item.TotalPrice.InexactFloat64(),
			DiscountAmount: item.DiscountAmount.InexactFloat64(),
			CategoryID:     uuidString(item.CategoryID),
		})
	}
	return &resp, nil
}

func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.purchases.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newUserError(ErrNotFound, msgPurchaseMissing)
		}
		return WrapError("purchase.delete", ErrPersistence, err)
	}
	s.logger.Info("Purchase deleted", zap.String("purchase_id", id.String()))
	return nil
}

func toPurchaseResponse(p *models.Purchase) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:            p.ID.String(),
		SupplierName:  p.SupplierName,
		SupplierCNPJ:  p.SupplierCNPJ,
		PurchaseDate:  p.PurchaseDate,
		TotalAmount:   p.TotalAmount.InexactFloat64(),
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		ItemCount:     p.ItemCount,
		CreatedAt:     p.CreatedAt,
	}
}

// parsePurchaseDate accepts the canonical date and a few common layouts;
// anything else falls back to now.
func parsePurchaseDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return now
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
