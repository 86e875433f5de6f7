package handlers

import (
	"purchase-control/internal/dto"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgInvalidCategory = "Nome da categoria é obrigatório e a cor deve ser hexadecimal"

type CategoryHandler struct {
	categories CategoryService
	reports    ReportService
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewCategoryHandler(categories CategoryService, reports ReportService, validate *validator.Validate, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		reports:    reports,
		validate:   validate,
		logger:     logger,
	}
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar categorias")
	}
	return c.JSON(categories)
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.CategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, msgInvalidCategory)
	}

	category, err := h.categories.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao criar categoria")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body dto.CategoryRequest true "Category"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, msgInvalidID)
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, msgInvalidCategory)
	}

	category, err := h.categories.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao atualizar categoria")
	}
	return c.JSON(category)
}

// Delete godoc
// @Summary Delete a category
// @Description Products and items of the category become uncategorized
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, msgInvalidID)
	}
	if err := h.categories.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err, "Erro ao excluir categoria")
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Details godoc
// @Summary Category details
// @Description Spending per product of a category over the last days
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Param period query int false "Window in days" default(30)
// @Success 200 {object} dto.CategoryDetails
// @Failure 400 {object} map[string]string
// @Router /api/categories/{id}/details [get]
func (h *CategoryHandler) Details(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, msgInvalidID)
	}

	details, err := h.reports.CategoryDetails(c.Context(), id, c.QueryInt("period", 30))
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao buscar detalhes da categoria")
	}
	return c.JSON(details)
}

// AssignProduct godoc
// @Summary Set a product's category
// @Description Items saved afterwards inherit the category. A null categoryId clears it.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body dto.AssignCategoryRequest true "Category"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id}/category [put]
func (h *CategoryHandler) AssignProduct(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, msgInvalidID)
	}
	var req dto.AssignCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, msgInvalidID)
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		id := uuid.MustParse(*req.CategoryID)
		categoryID = &id
	}

	product, err := h.categories.AssignProduct(c.Context(), productID, categoryID)
	if err != nil {
		return respondError(c, h.logger, err, "Erro ao atualizar produto")
	}
	return c.JSON(product)
}
