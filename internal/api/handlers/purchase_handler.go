package handlers

import (
	"fmt"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	purchases PurchaseService
	reports   ReportService
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewPurchaseHandler(purchases PurchaseService, reports ReportService, validate *validator.Validate, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		reports:   reports,
		validate:  validate,
		logger:    logger,
	}
}

// Save godoc
// @Summary Save a confirmed purchase
// @Description Persist a validated extraction as a purchase with its items
// @Tags purchases
// @Accept json
// @Produce json
// @Param request body dto.SavePurchaseRequest true "Confirmed extraction"
// @Success 200 {object} dto.SavePurchaseResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/purchases/save [post]
func (h *PurchaseHandler) Save(c *fiber.Ctx) error {
	var req dto.SavePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Dados incompletos")
	}

	resp, err := h.purchases.Save(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao salvar compra")
	}
	return c.JSON(resp)
}

// List godoc
// @Summary List purchases
// @Description Saved purchases, newest first, with item counts
// @Tags purchases
// @Produce json
// @Success 200 {array} dto.PurchaseResponse
// @Failure 500 {object} map[string]string
// @Router /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	purchases, err := h.purchases.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar compras")
	}
	return c.JSON(purchases)
}

// Get godoc
// @Summary Get a purchase
// @Tags purchases
// @Produce json
// @Param id path string true "Purchase ID"
// @Success 200 {object} dto.PurchaseResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/purchases/{id} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, msgInvalidID)
	}

	purchase, err := h.purchases.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar compra")
	}
	return c.JSON(purchase)
}

// Delete godoc
// @Summary Delete a purchase
// @Description Remove a purchase and its items
// @Tags purchases
// @Produce json
// @Param id path string true "Purchase ID"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, msgInvalidID)
	}

	if err := h.purchases.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err, "Erro ao excluir compra")
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// ByPeriod godoc
// @Summary Purchases by period
// @Description Filtered purchases with per-product, per-supplier and per-category totals
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param supplier query string false "Supplier name contains"
// @Param category query string false "Category name contains"
// @Param productName query string false "Product name contains"
// @Success 200 {object} dto.PeriodReport
// @Failure 400 {object} map[string]string
// @Router /api/purchases/by-period [get]
func (h *PurchaseHandler) ByPeriod(c *fiber.Ctx) error {
	report, err := h.reports.PurchasesByPeriod(c.Context(), periodQuery(c))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar compras")
	}
	return c.JSON(report)
}

// ExportByPeriod godoc
// @Summary Export purchases by period
// @Description The period report as an XLSX workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param supplier query string false "Supplier name contains"
// @Param category query string false "Category name contains"
// @Param productName query string false "Product name contains"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /api/purchases/by-period/export [get]
func (h *PurchaseHandler) ExportByPeriod(c *fiber.Ctx) error {
	content, err := h.reports.ExportPeriodXLSX(c.Context(), periodQuery(c))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao exportar compras")
	}

	c.Set(fiber.HeaderContentType, service.XLSXContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="compras-%s.xlsx"`, time.Now().Format("2006-01-02")))
	return c.Send(content)
}

func periodQuery(c *fiber.Ctx) service.PeriodQuery {
	return service.PeriodQuery{
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		Supplier:    c.Query("supplier"),
		Category:    c.Query("category"),
		ProductName: c.Query("productName"),
	}
}
