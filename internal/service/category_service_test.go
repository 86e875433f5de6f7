package service

import (
	"context"
	"errors"
	"testing"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryLifecycle(t *testing.T) {
	db := newMemDB()
	svc := NewCategoryService(memCategories{db}, memProducts{db}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CategoryRequest{Name: " Bebidas "})
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", created.Name)
	assert.Equal(t, models.DefaultCategoryColor, created.Color)

	id := uuid.MustParse(created.ID)
	updated, err := svc.Update(ctx, id, &dto.CategoryRequest{Name: "Bebidas e Sucos", Color: "#0EA5E9"})
	require.NoError(t, err)
	assert.Equal(t, "#0EA5E9", updated.Color)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bebidas e Sucos", list[0].Name)

	require.NoError(t, svc.Delete(ctx, id))
	err = svc.Delete(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCategoryCreateRequiresName(t *testing.T) {
	svc := NewCategoryService(memCategories{newMemDB()}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), &dto.CategoryRequest{Name: "   "})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAssignProduct(t *testing.T) {
	db := newMemDB()
	svc := NewCategoryService(memCategories{db}, memProducts{db}, zap.NewNop())
	ctx := context.Background()

	categoryID := uuid.New()
	db.categories = append(db.categories, &models.Category{ID: categoryID, Name: "Laticínios"})
	productID := uuid.New()
	db.products = append(db.products, &models.Product{ID: productID, Name: "Leite", NormalizedName: "leite", Unit: "l"})

	product, err := svc.AssignProduct(ctx, productID, &categoryID)
	require.NoError(t, err)
	require.NotNil(t, product.CategoryID)
	assert.Equal(t, categoryID.String(), *product.CategoryID)

	missing := uuid.New()
	_, err = svc.AssignProduct(ctx, productID, &missing)
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Categoria não encontrada", userErr.Message)

	product, err = svc.AssignProduct(ctx, productID, nil)
	require.NoError(t, err)
	assert.Nil(t, product.CategoryID)

	_, err = svc.AssignProduct(ctx, uuid.New(), nil)
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Produto não encontrado", userErr.Message)
}
