package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%arroz%", containsPattern("arroz"))
	assert.Equal(t, `%50\% off\_x%`, containsPattern("50% off_x"))
}

func TestFindPurchasesSkipsItemsWhenEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	from := time.Now().AddDate(0, 0, -30)
	mock.ExpectQuery(`SELECT (.+) FROM purchases p WHERE p.purchase_date >= \$1 AND p.supplier_name ILIKE \$2`).
		WithArgs(from, "%atacad%").
		WillReturnRows(pgxmock.NewRows(purchaseColumns))

	repo := NewReportRepository(mock, zap.NewNop())
	purchases, err := repo.FindPurchases(context.Background(), PurchaseFilter{From: &from, Supplier: "atacad"})
	require.NoError(t, err)
	assert.Empty(t, purchases)
	assert.NotNil(t, purchases)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPurchasesAttachesItems(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	purchaseID := uuid.New()
	categoryID := uuid.New()
	catName, catColor := "Hortifruti", "#22C55E"

	mock.ExpectQuery("SELECT (.+) FROM purchases p").
		WillReturnRows(pgxmock.NewRows(purchaseColumns).
			AddRow(purchaseID, "SACOLAO", nil, now, decimal.RequireFromString("10"), nil, "completed", now, now))
	mock.ExpectQuery(`SELECT (.+) FROM purchase_items pi LEFT JOIN categories c (.+) WHERE pi.purchase_id IN \(\$1\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, itemColumns...), "c.id", "c.name", "c.color")).
			AddRow(uuid.New(), purchaseID, uuid.New(), "TOMATE", decimal.NewFromInt(2), "kg",
				decimal.NewFromInt(5), decimal.NewFromInt(10), decimal.Zero, &categoryID, now,
				&categoryID, &catName, &catColor))

	repo := NewReportRepository(mock, zap.NewNop())
	purchases, err := repo.FindPurchases(context.Background(), PurchaseFilter{})
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	require.Len(t, purchases[0].Items, 1)
	assert.Equal(t, 1, purchases[0].ItemCount)
	require.NotNil(t, purchases[0].Items[0].Category)
	assert.Equal(t, "Hortifruti", purchases[0].Items[0].Category.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchProductNamesWithoutQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT product_name, COUNT\(\*\), COALESCE\(SUM\(quantity\), 0\) FROM purchase_items GROUP BY product_name`).
		WillReturnRows(pgxmock.NewRows([]string{"product_name", "count", "sum"}).
			AddRow("ARROZ 5KG", 4, decimal.NewFromInt(8)))

	repo := NewReportRepository(mock, zap.NewNop())
	usages, err := repo.SearchProductNames(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, 4, usages[0].Count)
	assert.True(t, usages[0].TotalQuantity.Equal(decimal.NewFromInt(8)))
}
