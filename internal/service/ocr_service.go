package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/repository"
	"purchase-control/pkg/metrics"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	extractionMaxTokens = 4000
	retryMaxTokens      = 3000
	// download cap for receipt files, above the upload limit
	maxDownloadBytes = 32 << 20

	pdfMIME         = "application/pdf"
	defaultFileType = "image/jpeg"

	MsgOCRFailed     = "Erro ao processar documento"
	MsgOCRSuggestion = "Verifique se a imagem está legível e tente novamente"
)

var retryItemKeys = []string{"itens", "items"}

// OCRService turns a stored receipt file into a canonical extraction.
type OCRService struct {
	receipts   ReceiptRepository
	files      FileStore
	llm        Completer
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func NewOCRService(receipts ReceiptRepository, files FileStore, llm Completer, httpClient *http.Client, m *metrics.Metrics, logger *zap.Logger) *OCRService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &OCRService{
		receipts:   receipts,
		files:      files,
		llm:        llm,
		httpClient: httpClient,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs extraction for a receipt and records the outcome on it:
// completed with the canonical result, or error with the failure message.
func (s *OCRService) Process(ctx context.Context, receiptID uuid.UUID) (*dto.OCRData, error) {
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newUserError(ErrNotFound, msgReceiptNotFound)
		}
		return nil, WrapError("ocr.process", ErrPersistence, err)
	}

	if err := s.receipts.MarkProcessing(ctx, receiptID); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, newUserError(ErrConflict, msgReceiptProcessed)
		}
		return nil, WrapError("ocr.process", ErrPersistence, err)
	}

	log := s.logger.With(zap.String("receipt_id", receiptID.String()))
	log.Info("OCR processing started", zap.String("type", receipt.FileType))

	data, err := s.extractStored(ctx, receipt.FileURL, receipt.FileType)
	if err != nil {
		log.Error("OCR processing failed", zap.Error(err))
		// the request context may already be gone; the status still has to land
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if markErr := s.receipts.MarkError(markCtx, receiptID, err.Error()); markErr != nil {
			log.Error("Failed to record OCR error", zap.Error(markErr))
		}
		return nil, err
	}

	result, err := json.Marshal(data)
	if err != nil {
		return nil, WrapError("ocr.process", ErrParse, err)
	}
	if err := s.receipts.MarkCompleted(ctx, receiptID, result); err != nil {
		// a concurrent run finished the receipt first
		if errors.Is(err, repository.ErrInvalidTransition) {
			log.Warn("Receipt finished by another run", zap.Error(err))
			return nil, newUserError(ErrConflict, msgReceiptProcessed)
		}
		return nil, WrapError("ocr.process", ErrPersistence, err)
	}

	log.Info("OCR processing completed",
		zap.String("supplier", data.SupplierName),
		zap.Int("items", len(data.Items)),
	)
	return data, nil
}

func (s *OCRService) extractStored(ctx context.Context, key, fileType string) (*dto.OCRData, error) {
	content, err := s.download(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.Extract(ctx, content, fileType)
}

// Extract sends the document to the model, retries once with an items-only
// prompt when no items came back, and reconciles the answer. A failing
// retry is logged and leaves the item list empty.
func (s *OCRService) Extract(ctx context.Context, content []byte, fileType string) (*dto.OCRData, error) {
	if fileType == "" {
		fileType = defaultFileType
	}

	prompt, image := s.documentInput(content, fileType)

	answer, err := s.llm.CompleteJSON(ctx, CompletionRequest{
		Operation:    opExtract,
		Prompt:       extractionPrompt + prompt,
		ImageDataURL: image,
		MaxTokens:    extractionMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ParseRawExtraction(answer)
	if err != nil {
		return nil, WrapError(opExtract, ErrParse, err)
	}

	if len(raw.Items()) == 0 {
		s.metrics.RecordRetry()
		s.logger.Warn("No items in first extraction, retrying with items-only prompt")

		items, err := s.extractItemsOnly(ctx, prompt, image)
		if err != nil {
			s.logger.Warn("Items-only extraction failed",
				zap.Error(WrapError(opExtractRetry, ErrExtractionRetryExhausted, err)))
		} else if len(items) > 0 {
			list := make([]any, len(items))
			for i, item := range items {
				list[i] = item
			}
			raw["items"] = list
		}
	}

	data := Reconcile(raw, s.now())
	s.metrics.RecordExtraction(len(data.Items))
	return data, nil
}

func (s *OCRService) extractItemsOnly(ctx context.Context, prompt, image string) ([]map[string]any, error) {
	answer, err := s.llm.CompleteJSON(ctx, CompletionRequest{
		Operation:    opExtractRetry,
		Prompt:       itemsOnlyPrompt + prompt,
		ImageDataURL: image,
		MaxTokens:    retryMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ParseRawExtraction(answer)
	if err != nil {
		return nil, WrapError(opExtractRetry, ErrParse, err)
	}
	return itemList(raw, retryItemKeys), nil
}

// documentInput returns the prompt suffix and image data URL for a file.
// Images travel as a data URL; PDFs contribute their text layer.
func (s *OCRService) documentInput(content []byte, fileType string) (string, string) {
	if strings.HasPrefix(fileType, "image/") {
		return "", "data:" + fileType + ";base64," + base64.StdEncoding.EncodeToString(content)
	}

	if fileType == pdfMIME {
		text, err := extractPDFText(content)
		if err != nil || text == "" {
			s.logger.Warn("PDF has no readable text layer", zap.Error(err))
			return pdfNoTextNotice, ""
		}
		s.logger.Info("PDF text extracted", zap.Int("text_length", len(text)))
		return pdfTextHeader + text, ""
	}

	return "", ""
}

func (s *OCRService) download(ctx context.Context, key string) ([]byte, error) {
	signedURL, err := s.files.SignedReadURL(ctx, key)
	if err != nil {
		return nil, WrapError("ocr.download", ErrUpstreamHTTP, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, WrapError("ocr.download", ErrUpstreamHTTP, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, WrapError("ocr.download", ErrUpstreamHTTP, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, WrapError("ocr.download", ErrUpstreamHTTP, fmt.Errorf("status %d", resp.StatusCode))
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, WrapError("ocr.download", ErrUpstreamHTTP, err)
	}
	return content, nil
}

// extractPDFText reads the plain text layer of a PDF. Scanned PDFs have
// none and yield an empty string.
func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		// the parser panics on some malformed files
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return strings.TrimSpace(sanitizeUTF8(buf.String())), nil
}
