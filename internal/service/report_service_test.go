package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
	"purchase-control/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestCalcVariation(t *testing.T) {
	assert.Equal(t, 100.0, CalcVariation(10, 0))
	assert.Equal(t, 0.0, CalcVariation(0, 0))
	assert.Equal(t, -50.0, CalcVariation(5, 10))
	assert.Equal(t, 25.0, CalcVariation(125, 100))
}

type reportFixture struct {
	db        *memDB
	purchases *PurchaseService
	reports   *ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	db := newMemDB()
	purchases := NewPurchaseService(memTx{db}, memPurchases{db}, memProducts{db}, memReceipts{db}, nil, zap.NewNop())
	purchases.now = func() time.Time { return fixedToday }
	reports := NewReportService(memReports{db}, memProducts{db}, zap.NewNop())
	reports.now = func() time.Time { return fixedToday }
	return &reportFixture{db: db, purchases: purchases, reports: reports}
}

func (f *reportFixture) save(t *testing.T, supplier, date string, items ...dto.OCRItem) {
	t.Helper()
	total := 0.0
	for _, item := range items {
		total += item.TotalPrice
	}
	_, err := f.purchases.Save(context.Background(), &dto.SavePurchaseRequest{
		ReceiptID: seedReceipt(f.db).String(),
		OCRData: &dto.OCRData{
			SupplierName: supplier,
			PurchaseDate: date,
			TotalAmount:  total,
			Items:        items,
		},
	})
	require.NoError(t, err)
}

func (f *reportFixture) category(name, color string, products ...string) uuid.UUID {
	id := uuid.New()
	f.db.categories = append(f.db.categories, &models.Category{ID: id, Name: name, Color: color})
	for _, p := range products {
		f.db.products = append(f.db.products, &models.Product{
			ID: uuid.New(), Name: p, NormalizedName: NormalizeProductName(p), Unit: "kg", CategoryID: &id,
		})
	}
	return id
}

func TestDashboardStatsEmptyWindow(t *testing.T) {
	f := newReportFixture(t)

	stats, err := f.reports.DashboardStats(context.Background(), 30)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalGasto)
	assert.Zero(t, stats.NumCompras)
	assert.Zero(t, stats.TicketMedio)
	assert.NotNil(t, stats.GastosPorCategoria)
	assert.Empty(t, stats.GastosPorCategoria)

	require.Len(t, stats.EvolucaoMensal, 6)
	labels := make([]string, 0, 6)
	for _, m := range stats.EvolucaoMensal {
		assert.Zero(t, m.Value)
		labels = append(labels, m.Month)
	}
	assert.Equal(t, []string{"out/24", "nov/24", "dez/24", "jan/25", "fev/25", "mar/25"}, labels)
}

func TestDashboardStats(t *testing.T) {
	f := newReportFixture(t)
	f.category("Hortifruti", "#22C55E", "Tomate")

	f.save(t, "Ceasa", "2025-03-10", dto.OCRItem{Name: "Tomate", Quantity: 2, UnitPrice: 5, TotalPrice: 10})
	f.save(t, "Mercado", "2025-03-01", dto.OCRItem{Name: "Detergente", Quantity: 1, UnitPrice: 30, TotalPrice: 30})
	f.save(t, "Mercado", "2025-01-05", dto.OCRItem{Name: "Arroz", Quantity: 1, UnitPrice: 25, TotalPrice: 25})

	stats, err := f.reports.DashboardStats(context.Background(), 30)
	require.NoError(t, err)
	assert.InDelta(t, 40, stats.TotalGasto, 1e-9)
	assert.Equal(t, 2, stats.NumCompras)
	assert.InDelta(t, 20, stats.TicketMedio, 1e-9)
	assert.Equal(t, []dto.CategorySpend{{Name: "Hortifruti", Value: 10, Color: "#22C55E"}}, stats.GastosPorCategoria)

	require.Len(t, stats.EvolucaoMensal, 6)
	assert.InDelta(t, 25, stats.EvolucaoMensal[3].Value, 1e-9)
	assert.InDelta(t, 40, stats.EvolucaoMensal[5].Value, 1e-9)
}

func TestCategoryDetails(t *testing.T) {
	f := newReportFixture(t)
	categoryID := f.category("Hortifruti", "#22C55E", "Tomate", "Cebola", "Batata")

	f.save(t, "Ceasa", "2025-03-01", dto.OCRItem{Name: "Tomate", Quantity: 2, UnitPrice: 5, TotalPrice: 10})
	f.save(t, "Ceasa", "2025-03-05", dto.OCRItem{Name: "Cebola", Quantity: 4, UnitPrice: 5, TotalPrice: 20})
	f.save(t, "Feira", "2025-03-08", dto.OCRItem{Name: "TOMATE", Quantity: 1, UnitPrice: 6, TotalPrice: 6})
	f.save(t, "Feira", "2025-03-10", dto.OCRItem{Name: "Tomate", Quantity: 1, UnitPrice: 4, TotalPrice: 4})
	f.save(t, "Feira", "2025-03-12", dto.OCRItem{Name: "Tomate", Quantity: 3, UnitPrice: 5, TotalPrice: 15})
	f.save(t, "Ceasa", "2024-12-01", dto.OCRItem{Name: "Batata", Quantity: 5, UnitPrice: 3, TotalPrice: 15})

	details, err := f.reports.CategoryDetails(context.Background(), categoryID, 30)
	require.NoError(t, err)
	require.Len(t, details.Products, 3)

	tomato := details.Products[0]
	assert.Equal(t, "Tomate", tomato.Name)
	assert.InDelta(t, 35, tomato.TotalValue, 1e-9)
	assert.InDelta(t, 7, tomato.TotalQuantity, 1e-9)
	assert.Equal(t, 4, tomato.Purchases)
	assert.InDelta(t, 5, tomato.AvgPrice, 1e-9)
	require.Len(t, tomato.RecentPurchases, 3)
	assert.Equal(t, "2025-03-12", tomato.RecentPurchases[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-03-08", tomato.RecentPurchases[2].Date.Format("2006-01-02"))

	assert.Equal(t, "Cebola", details.Products[1].Name)
	assert.Equal(t, "Batata", details.Products[2].Name)
	assert.Zero(t, details.Products[2].TotalValue)
	assert.Empty(t, details.Products[2].RecentPurchases)

	assert.InDelta(t, 55, details.Totals.Value, 1e-9)
	assert.Equal(t, 5, details.Totals.Purchases)
	assert.Equal(t, 3, details.Totals.Products)
}

func TestProductHistoryRequiresName(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.reports.ProductHistory(context.Background(), "  ", 0)
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "productName é obrigatório", userErr.Message)
}

func TestProductHistoryBySupplier(t *testing.T) {
	f := newReportFixture(t)
	f.save(t, "Mercado A", "2025-03-01", dto.OCRItem{Name: "Arroz 5kg", Quantity: 1, UnitPrice: 20, TotalPrice: 20})
	f.save(t, "Mercado B", "2025-03-05", dto.OCRItem{Name: "ARROZ 5KG", Quantity: 2, UnitPrice: 25, TotalPrice: 50})
	f.save(t, "Mercado A", "2025-03-10", dto.OCRItem{Name: "Arroz 5kg", Quantity: 1, UnitPrice: 30, TotalPrice: 30})
	f.save(t, "Mercado A", "2025-03-10", dto.OCRItem{Name: "Feijão", Quantity: 1, UnitPrice: 8, TotalPrice: 8})

	history, err := f.reports.ProductHistory(context.Background(), "arroz", 0)
	require.NoError(t, err)

	assert.Equal(t, 3, history.Stats.TotalCompras)
	assert.InDelta(t, 4, history.Stats.QuantidadeTotal, 1e-9)
	assert.InDelta(t, 100, history.Stats.ValorTotal, 1e-9)
	assert.InDelta(t, 25, history.Stats.PrecoMedio, 1e-9)
	assert.InDelta(t, 20, history.Stats.PrecoMinimo, 1e-9)
	assert.InDelta(t, 30, history.Stats.PrecoMaximo, 1e-9)
	assert.Equal(t, []string{"Mercado A", "Mercado B"}, history.Stats.Fornecedores)

	require.Len(t, history.History, 3)
	assert.Equal(t, "2025-03-10", history.History[0].Data.Format("2006-01-02"))
	assert.Equal(t, models.UncategorizedName, history.History[0].Categoria)

	require.Len(t, history.PorFornecedor, 2)
	a := history.PorFornecedor[0]
	assert.Equal(t, "Mercado A", a.Nome)
	assert.Equal(t, 2, a.Compras)
	assert.InDelta(t, 25, a.PrecoMedio, 1e-9)
	assert.Equal(t, "2025-03-10", a.UltimaCompra.Format("2006-01-02"))
}

func TestProductSearch(t *testing.T) {
	f := newReportFixture(t)
	f.save(t, "Mercado", "2025-03-01",
		dto.OCRItem{Name: "Arroz", Quantity: 1, TotalPrice: 20},
		dto.OCRItem{Name: "Feijão", Quantity: 2, TotalPrice: 16},
	)
	f.save(t, "Mercado", "2025-03-02", dto.OCRItem{Name: "Feijão", Quantity: 1, TotalPrice: 8})

	result, err := f.reports.ProductSearch(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, dto.ProductSearchHit{Name: "Feijão", Count: 2, TotalQuantity: 3}, result.Products[0])

	result, err = f.reports.ProductSearch(context.Background(), "arr", 0)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Arroz", result.Products[0].Name)
	assert.Equal(t, "arr", result.Query)
}

func TestPurchasesByPeriodGroupsByDisplayName(t *testing.T) {
	f := newReportFixture(t)
	f.category("Hortifruti", "#22C55E", "Tomate")
	f.save(t, "Ceasa", "2025-03-01", dto.OCRItem{Name: "Tomate", Quantity: 2, UnitPrice: 5, TotalPrice: 10})
	f.save(t, "Feira", "2025-03-05", dto.OCRItem{Name: "TOMATE", Quantity: 1, UnitPrice: 6, TotalPrice: 6})
	f.save(t, "Ceasa", "2025-03-06", dto.OCRItem{Name: "Sabão", Quantity: 1, UnitPrice: 12, TotalPrice: 12})
	f.save(t, "Ceasa", "2025-02-01", dto.OCRItem{Name: "Tomate", Quantity: 9, UnitPrice: 5, TotalPrice: 45})

	report, err := f.reports.PurchasesByPeriod(context.Background(), PeriodQuery{StartDate: "2025-03-01", EndDate: "2025-03-06"})
	require.NoError(t, err)

	assert.Equal(t, dto.PeriodRange{Inicio: "2025-03-01", Fim: "2025-03-06"}, report.Periodo)
	assert.Equal(t, 3, report.Stats.TotalCompras)
	assert.Equal(t, 3, report.Stats.TotalItens)
	assert.InDelta(t, 28, report.Stats.ValorTotal, 1e-9)
	assert.Equal(t, 2, report.Stats.Fornecedores)

	names := make([]string, 0, len(report.PorProduto))
	for _, p := range report.PorProduto {
		names = append(names, p.Nome)
	}
	assert.Equal(t, []string{"Sabão", "Tomate", "TOMATE"}, names)

	require.Len(t, report.PorFornecedor, 2)
	assert.Equal(t, "Ceasa", report.PorFornecedor[0].Nome)
	assert.InDelta(t, 22, report.PorFornecedor[0].ValorTotal, 1e-9)

	require.Len(t, report.PorCategoria, 2)
	assert.Equal(t, "Hortifruti", report.PorCategoria[0].Nome)
	assert.InDelta(t, 16, report.PorCategoria[0].ValorTotal, 1e-9)
	assert.Equal(t, models.UncategorizedName, report.PorCategoria[1].Nome)
	assert.Equal(t, models.UncategorizedColor, report.PorCategoria[1].Cor)
}

func TestPurchasesByPeriodDefaults(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.reports.PurchasesByPeriod(context.Background(), PeriodQuery{})
	require.NoError(t, err)
	assert.Equal(t, dto.PeriodRange{Inicio: "Início", Fim: "Hoje"}, report.Periodo)
	assert.NotNil(t, report.Compras)
	assert.NotNil(t, report.PorProduto)

	_, err = f.reports.PurchasesByPeriod(context.Background(), PeriodQuery{StartDate: "ontem"})
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
}

func TestExportPeriodXLSX(t *testing.T) {
	f := newReportFixture(t)
	f.save(t, "Ceasa", "2025-03-01",
		dto.OCRItem{Name: "Tomate", Quantity: 2, UnitPrice: 5, TotalPrice: 10},
		dto.OCRItem{Name: "Cebola", Quantity: 1, UnitPrice: 4, TotalPrice: 4},
	)

	content, err := f.reports.ExportPeriodXLSX(context.Background(), PeriodQuery{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Resumo", "Compras", "Produtos", "Fornecedores", "Categorias"}, book.GetSheetList())

	rows, err := book.GetRows("Produtos")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Produto", rows[0][0])
	assert.Equal(t, "Tomate", rows[1][0])

	rows, err = book.GetRows("Compras")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "01/03/2025", rows[1][0])
}

func TestSummaryComparesWithPreviousMonth(t *testing.T) {
	f := newReportFixture(t)
	f.save(t, "Mercado", "2025-02-10", dto.OCRItem{Name: "Arroz", Quantity: 1, TotalPrice: 50})
	f.save(t, "Mercado", "2025-03-02", dto.OCRItem{Name: "Arroz", Quantity: 1, TotalPrice: 40})
	f.save(t, "Ceasa", "2025-03-03", dto.OCRItem{Name: "Tomate", Quantity: 3, TotalPrice: 35})

	summary, err := f.reports.Summary(context.Background(), "month", true)
	require.NoError(t, err)
	assert.Equal(t, "month", summary.Tipo)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), summary.Periodo.Atual.Inicio)
	require.NotNil(t, summary.Periodo.Anterior)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), summary.Periodo.Anterior.Inicio)

	assert.Equal(t, 2, summary.Dados.TotalCompras)
	assert.InDelta(t, 75, summary.Dados.TotalValor, 1e-9)
	require.Len(t, summary.Dados.TopProdutos, 2)
	assert.Equal(t, "Arroz", summary.Dados.TopProdutos[0].Nome)
	assert.Equal(t, "Mercado", summary.Dados.TopFornecedores[0].Nome)

	require.NotNil(t, summary.Comparacao)
	assert.InDelta(t, 100, summary.Comparacao.Compras.Variacao, 1e-9)
	assert.InDelta(t, 50, summary.Comparacao.Valor.Variacao, 1e-9)
	assert.InDelta(t, -25, summary.Comparacao.TicketMedio.Variacao, 1e-9)
}

func TestSummaryWithoutComparison(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.reports.Summary(context.Background(), "bogus", false)
	require.NoError(t, err)
	assert.Equal(t, "month", summary.Tipo)
	assert.Nil(t, summary.Periodo.Anterior)
	assert.Nil(t, summary.Comparacao)
}

func TestPeriodBoundsWeekStartsOnSunday(t *testing.T) {
	bounds := periodBounds(SummaryWeek, fixedToday)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), bounds.Inicio)
	assert.Equal(t, time.Date(2025, 3, 15, 23, 59, 59, 999_000_000, time.UTC), bounds.Fim)

	year := periodBounds(SummaryYear, fixedToday)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), year.Inicio)
	assert.Equal(t, 2025, year.Fim.Year())
	assert.Equal(t, time.December, year.Fim.Month())
}

func TestReceiptToProductHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer server.Close()

	f := newReportFixture(t)
	files := newFakeFiles(server.URL)
	receipts := NewReceiptService(memReceipts{f.db}, files, config.UploadConfig{
		MaxBytes: 10 << 20, AllowedTypes: []string{"image/jpeg"},
	}, zap.NewNop())
	completer := &scriptedCompleter{answers: []string{`{
		"fornecedor": "MERCADO X",
		"total": 37.80,
		"itens": [{"nome": "ARROZ 5KG", "quantidade": 2, "preco_unitario": 18.90, "preco_total": 37.80}]
	}`}}
	ocr := NewOCRService(memReceipts{f.db}, files, completer, server.Client(), nil, zap.NewNop())
	ocr.now = func() time.Time { return fixedToday }
	ctx := context.Background()

	uploaded, err := receipts.Upload(ctx, "cupom.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)

	data, err := ocr.Process(ctx, uuid.MustParse(uploaded.ReceiptID))
	require.NoError(t, err)

	_, err = f.purchases.Save(ctx, &dto.SavePurchaseRequest{ReceiptID: uploaded.ReceiptID, OCRData: data})
	require.NoError(t, err)

	history, err := f.reports.ProductHistory(ctx, "ARROZ", 0)
	require.NoError(t, err)
	require.Len(t, history.History, 1)
	assert.InDelta(t, 37.80, history.History[0].PrecoTotal, 1e-9)
	assert.InDelta(t, 2, history.History[0].Quantidade, 1e-9)
	assert.Equal(t, "MERCADO X", history.History[0].Fornecedor)
}
