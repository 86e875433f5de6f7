package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
	"purchase-control/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgCategoryMissing = "Categoria não encontrada"
	msgProductMissing  = "Produto não encontrado"
)

type CategoryService struct {
	categories CategoryRepository
	products   ProductRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewCategoryService(categories CategoryRepository, products ProductRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		products:   products,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, WrapError("category.list", ErrPersistence, err)
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	now := s.now()
	category := &models.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Color:     orDefault(req.Color, models.DefaultCategoryColor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if category.Name == "" {
		return nil, newUserError(ErrValidation, "Nome da categoria é obrigatório")
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, WrapError("category.create", ErrPersistence, err)
	}

	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("name", category.Name))
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category := &models.Category{
		ID:    id,
		Name:  strings.TrimSpace(req.Name),
		Color: orDefault(req.Color, models.DefaultCategoryColor),
	}
	if category.Name == "" {
		return nil, newUserError(ErrValidation, "Nome da categoria é obrigatório")
	}
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newUserError(ErrNotFound, msgCategoryMissing)
		}
		return nil, WrapError("category.update", ErrPersistence, err)
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newUserError(ErrNotFound, msgCategoryMissing)
		}
		return WrapError("category.delete", ErrPersistence, err)
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

// AssignProduct sets the category a product passes on to items saved from
// now on. A nil categoryID clears it.
func (s *CategoryService) AssignProduct(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) (*dto.ProductResponse, error) {
	if categoryID != nil {
		if _, err := s.categories.GetByID(ctx, *categoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newUserError(ErrNotFound, msgCategoryMissing)
			}
			return nil, WrapError("category.assign", ErrPersistence, err)
		}
	}

	product, err := s.products.AssignCategory(ctx, productID, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newUserError(ErrNotFound, msgProductMissing)
		}
		return nil, WrapError("category.assign", ErrPersistence, err)
	}

	return &dto.ProductResponse{
		ID:             product.ID.String(),
		Name:           product.Name,
		NormalizedName: product.NormalizedName,
		Unit:           product.Unit,
		CategoryID:     uuidString(product.CategoryID),
	}, nil
}

func toCategoryResponse(c *models.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:    c.ID.String(),
		Name:  c.Name,
		Color: c.Color,
	}
}
