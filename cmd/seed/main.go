package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"purchase-control/internal/models"
	"purchase-control/internal/repository"
	"purchase-control/internal/service"
	"purchase-control/pkg/config"
	"purchase-control/pkg/logger"
	"purchase-control/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var categoryColors = map[string]string{
	"Hortifruti":             "#22C55E",
	"Carnes e Peixes":        "#EF4444",
	"Laticínios":             "#FACC15",
	"Grãos e Cereais":        "#D97706",
	"Bebidas":                "#0EA5E9",
	"Temperos e Condimentos": "#F97316",
	"Limpeza":                "#8B5CF6",
	"Descartáveis":           "#64748B",
	"Outros":                 models.DefaultCategoryColor,
}

type seedProduct struct {
	name     string
	unit     string
	category string
}

var commonProducts = []seedProduct{
	{"Tomate", "kg", "Hortifruti"},
	{"Cebola", "kg", "Hortifruti"},
	{"Alface", "un", "Hortifruti"},
	{"Carne Moída", "kg", "Carnes e Peixes"},
	{"Filé de Frango", "kg", "Carnes e Peixes"},
	{"Leite Integral", "l", "Laticínios"},
	{"Queijo Mussarela", "kg", "Laticínios"},
	{"Arroz", "kg", "Grãos e Cereais"},
	{"Feijão", "kg", "Grãos e Cereais"},
	{"Água Mineral", "un", "Bebidas"},
	{"Sal", "kg", "Temperos e Condimentos"},
	{"Detergente", "un", "Limpeza"},
	{"Copo Descartável", "un", "Descartáveis"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	productRepo := repository.NewProductRepository(db, appLogger)

	categoryIDs, err := seedCategories(ctx, categoryRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed categories", zap.Error(err))
	}

	for _, p := range commonProducts {
		now := time.Now()
		categoryID := categoryIDs[p.category]
		product, err := productRepo.Resolve(ctx, db, &models.Product{
			ID:             uuid.New(),
			Name:           p.name,
			NormalizedName: service.NormalizeProductName(p.name),
			Unit:           p.unit,
			CategoryID:     &categoryID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			appLogger.Fatal("Failed to seed product", zap.String("product", p.name), zap.Error(err))
		}
		appLogger.Info("Product ready", zap.String("product", product.Name), zap.String("id", product.ID.String()))
	}

	appLogger.Info("Seed completed",
		zap.Int("categories", len(categoryIDs)),
		zap.Int("products", len(commonProducts)),
	)
}

// seedCategories creates the default categories that do not exist yet and
// returns every default category ID by name.
func seedCategories(ctx context.Context, repo *repository.CategoryRepository, log *zap.Logger) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(service.DefaultCategoryNames))
	for _, name := range service.DefaultCategoryNames {
		existing, err := repo.GetByName(ctx, name)
		if err == nil {
			ids[name] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		now := time.Now()
		category := &models.Category{
			ID:        uuid.New(),
			Name:      name,
			Color:     categoryColors[name],
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(ctx, category); err != nil {
			return nil, err
		}
		log.Info("Category created", zap.String("category", name))
		ids[name] = category.ID
	}
	return ids, nil
}
