package api

import (
	"purchase-control/docs"
	"purchase-control/internal/api/handlers"
	"purchase-control/pkg/config"
	"purchase-control/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Receipts  *handlers.ReceiptHandler
	Chat      *handlers.ChatHandler
	Purchases *handlers.PurchaseHandler
	Category  *handlers.CategoryHandler
	Reports   *handlers.ReportHandler
}

func SetupRouter(h Handlers, cfg *config.ServerConfig, m *metrics.Metrics, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(logger.New())
	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}

	_ = docs.SwaggerInfo // registers the swagger docs
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", h.Health.Health)

	api := app.Group("/api")

	api.Post("/upload", h.Receipts.Upload)

	ocr := api.Group("/ocr")
	ocr.Post("/process", h.Receipts.ProcessOCR)
	ocr.Get("/result", h.Receipts.OCRResult)

	api.Post("/chat/validate", h.Chat.Validate)

	purchases := api.Group("/purchases")
	purchases.Post("/save", h.Purchases.Save)
	purchases.Get("/by-period", h.Purchases.ByPeriod)
	purchases.Get("/by-period/export", h.Purchases.ExportByPeriod)
	purchases.Get("", h.Purchases.List)
	purchases.Get("/:id", h.Purchases.Get)
	purchases.Delete("/:id", h.Purchases.Delete)

	categories := api.Group("/categories")
	categories.Get("", h.Category.List)
	categories.Post("", h.Category.Create)
	categories.Put("/:id", h.Category.Update)
	categories.Delete("/:id", h.Category.Delete)
	categories.Get("/:id/details", h.Category.Details)

	products := api.Group("/products")
	products.Get("/history", h.Reports.ProductHistory)
	products.Get("/search", h.Reports.ProductSearch)
	products.Put("/:id/category", h.Category.AssignProduct)

	api.Get("/dashboard/stats", h.Reports.Dashboard)
	api.Get("/reports/summary", h.Reports.Summary)

	return app
}
