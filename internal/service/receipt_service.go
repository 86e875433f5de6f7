package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
	"purchase-control/internal/repository"
	"purchase-control/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgFileMissing      = "Arquivo não fornecido"
	msgFileType         = "Tipo de arquivo não suportado"
	msgReceiptNotFound  = "Receipt não encontrado"
	msgReceiptProcessed = "Receipt já processado"
)

type ReceiptService struct {
	receipts ReceiptRepository
	files    FileStore
	upload   config.UploadConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewReceiptService(receipts ReceiptRepository, files FileStore, upload config.UploadConfig, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		receipts: receipts,
		files:    files,
		upload:   upload,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload stores the file and records a pending receipt for it.
func (s *ReceiptService) Upload(ctx context.Context, fileName, contentType string, data []byte) (*dto.UploadResponse, error) {
	if len(data) == 0 {
		return nil, newUserError(ErrValidation, msgFileMissing)
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !slices.Contains(s.upload.AllowedTypes, contentType) {
		return nil, newUserError(ErrValidation, msgFileType)
	}
	if s.upload.MaxBytes > 0 && int64(len(data)) > s.upload.MaxBytes {
		return nil, newUserError(ErrValidation, fileTooLargeMessage(s.upload.MaxBytes))
	}

	fileName = sanitizeUTF8(filepath.Base(fileName))
	key, err := s.files.Put(ctx, data, fileName, contentType)
	if err != nil {
		return nil, WrapError("receipt.upload", ErrUpstreamHTTP, err)
	}

	now := s.now()
	receipt := &models.Receipt{
		ID:        uuid.New(),
		FileURL:   key,
		FileName:  fileName,
		FileSize:  int64(len(data)),
		FileType:  contentType,
		OCRStatus: models.OCRStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.receipts.Create(ctx, receipt); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, WrapError("receipt.upload", ErrPersistence, err)
	}

	s.logger.Info("Receipt uploaded",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("key", key),
		zap.String("type", contentType),
		zap.Int("size", len(data)),
	)

	return &dto.UploadResponse{
		Success:          true,
		ReceiptID:        receipt.ID.String(),
		CloudStoragePath: key,
	}, nil
}

// Result returns the stored OCR result of a receipt, or an empty object
// when processing has not produced one yet.
func (s *ReceiptService) Result(ctx context.Context, receiptID uuid.UUID) (json.RawMessage, error) {
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newUserError(ErrNotFound, msgReceiptNotFound)
		}
		return nil, WrapError("receipt.result", ErrPersistence, err)
	}
	if len(receipt.OCRResult) == 0 {
		return json.RawMessage("{}"), nil
	}
	return receipt.OCRResult, nil
}

func fileTooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("Arquivo muito grande (máx %dMB)", maxBytes/(1024*1024))
}
