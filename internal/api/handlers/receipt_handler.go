package handlers

import (
	"errors"
	"io"

	"purchase-control/internal/dto"
	"purchase-control/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgReceiptIDMissing = "receiptId não fornecido"

type ReceiptHandler struct {
	receipts ReceiptService
	ocr      OCRService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewReceiptHandler(receipts ReceiptService, ocr OCRService, validate *validator.Validate, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts: receipts,
		ocr:      ocr,
		validate: validate,
		logger:   logger,
	}
}

// Upload godoc
// @Summary Upload a receipt
// @Description Store a receipt photo or PDF and register it for OCR
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt file (JPEG, PNG or PDF, up to 10MB)"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/upload [post]
func (h *ReceiptHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Arquivo não fornecido")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Falha ao abrir o arquivo")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return badRequest(c, "Falha ao ler o arquivo")
	}

	resp, err := h.receipts.Upload(c.Context(), file.Filename, file.Header.Get("Content-Type"), data)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao fazer upload")
	}
	return c.JSON(resp)
}

// ProcessOCR godoc
// @Summary Extract purchase data from a receipt
// @Description Run OCR on an uploaded receipt and return the reconciled extraction
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body dto.ProcessOCRRequest true "Receipt to process"
// @Success 200 {object} dto.ProcessOCRResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} dto.OCRErrorResponse
// @Router /api/ocr/process [post]
func (h *ReceiptHandler) ProcessOCR(c *fiber.Ctx) error {
	var req dto.ProcessOCRRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, msgReceiptIDMissing)
	}

	data, err := h.ocr.Process(c.Context(), uuid.MustParse(req.ReceiptID))
	if err != nil {
		var userErr *service.UserError
		if errors.As(err, &userErr) {
			return respondError(c, h.logger, err, service.MsgOCRFailed)
		}
		h.logger.Error("OCR failed", zap.String("receipt_id", req.ReceiptID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.OCRErrorResponse{
			Error:      service.MsgOCRFailed,
			Details:    err.Error(),
			Suggestion: service.MsgOCRSuggestion,
		})
	}

	return c.JSON(dto.ProcessOCRResponse{
		Success: true,
		Data:    data,
	})
}

// OCRResult godoc
// @Summary Stored OCR result
// @Description Return the extraction stored on a receipt, or an empty object
// @Tags receipts
// @Produce json
// @Param receiptId query string true "Receipt ID"
// @Success 200 {object} dto.OCRData
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/ocr/result [get]
func (h *ReceiptHandler) OCRResult(c *fiber.Ctx) error {
	raw := c.Query("receiptId")
	if raw == "" {
		return badRequest(c, msgReceiptIDMissing)
	}
	receiptID, err := uuid.Parse(raw)
	if err != nil {
		return badRequest(c, msgInvalidID)
	}

	result, err := h.receipts.Result(c.Context(), receiptID)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar resultado")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}
