package handlers

import (
	"purchase-control/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// Dashboard godoc
// @Summary Dashboard stats
// @Description Spending totals for the last days and the last six months
// @Tags reports
// @Produce json
// @Param period query int false "Window in days" default(30)
// @Success 200 {object} dto.DashboardStats
// @Router /api/dashboard/stats [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.reports.DashboardStats(c.Context(), c.QueryInt("period", service.DefaultPeriodDays))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar estatísticas")
	}
	return c.JSON(stats)
}

// ProductHistory godoc
// @Summary Product price history
// @Description Purchases of items whose name contains productName, with price statistics
// @Tags products
// @Produce json
// @Param productName query string true "Product name contains"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} dto.ProductHistory
// @Failure 400 {object} map[string]string
// @Router /api/products/history [get]
func (h *ReportHandler) ProductHistory(c *fiber.Ctx) error {
	history, err := h.reports.ProductHistory(c.Context(), c.Query("productName"), c.QueryInt("limit", service.DefaultHistoryLimit))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar histórico")
	}
	return c.JSON(history)
}

// ProductSearch godoc
// @Summary Search product names
// @Description Item names matching q, most bought first
// @Tags products
// @Produce json
// @Param q query string false "Name contains"
// @Param limit query int false "Maximum rows" default(10)
// @Success 200 {object} dto.ProductSearchResult
// @Router /api/products/search [get]
func (h *ReportHandler) ProductSearch(c *fiber.Ctx) error {
	result, err := h.reports.ProductSearch(c.Context(), c.Query("q"), c.QueryInt("limit", service.DefaultSearchLimit))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar produtos")
	}
	return c.JSON(result)
}

// Summary godoc
// @Summary Period summary
// @Description Totals for the current week, month or year, optionally compared with the previous one
// @Tags reports
// @Produce json
// @Param type query string false "week, month or year" default(month)
// @Param compare query bool false "Include the previous period"
// @Success 200 {object} dto.SummaryReport
// @Router /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.Context(), c.Query("type", service.SummaryMonth), c.QueryBool("compare"))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao gerar relatório")
	}
	return c.JSON(summary)
}
