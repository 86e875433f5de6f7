package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
	"purchase-control/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPeriodDays   = 30
	DefaultHistoryLimit = 50
	DefaultSearchLimit  = 10
	dashboardMonths     = 6
	recentPurchaseCount = 3
	topListSize         = 10

	periodStartLabel = "Início"
	periodEndLabel   = "Hoje"

	SummaryWeek  = "week"
	SummaryMonth = "month"
	SummaryYear  = "year"

	msgProductNameRequired = "productName é obrigatório"
)

var ptBRShortMonths = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// PeriodQuery filters the period report. Dates are inclusive; empty
// strings leave that side open.
type PeriodQuery struct {
	StartDate   string
	EndDate     string
	Supplier    string
	Category    string
	ProductName string
}

// ReportService aggregates saved purchases. Rows come from the repository;
// grouping and sums happen here.
type ReportService struct {
	reports  ReportRepository
	products ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportService(reports ReportRepository, products ProductRepository, logger *zap.Logger) *ReportService {
	return &ReportService{
		reports:  reports,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// DashboardStats summarises the last periodDays and the spending of the
// last six calendar months, oldest first.
func (s *ReportService) DashboardStats(ctx context.Context, periodDays int) (*dto.DashboardStats, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	now := s.now()
	from := now.AddDate(0, 0, -periodDays)

	purchases, err := s.reports.FindPurchases(ctx, repository.PurchaseFilter{From: &from})
	if err != nil {
		return nil, WrapError("report.dashboard", ErrPersistence, err)
	}

	total := decimal.Zero
	spendByCategory := newOrderedGroups[*dto.CategorySpend]()
	for _, p := range purchases {
		total = total.Add(p.TotalAmount)
		for _, item := range p.Items {
			if item.Category == nil {
				continue
			}
			group := spendByCategory.get(item.Category.ID.String(), func() *dto.CategorySpend {
				return &dto.CategorySpend{Name: item.Category.Name, Color: item.Category.Color}
			})
			group.Value += item.TotalPrice.InexactFloat64()
		}
	}

	monthly, err := s.monthlyTotals(ctx, now)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStats{
		TotalGasto:         total.InexactFloat64(),
		NumCompras:         len(purchases),
		GastosPorCategoria: make([]dto.CategorySpend, 0, spendByCategory.len()),
		EvolucaoMensal:     monthly,
	}
	if stats.NumCompras > 0 {
		stats.TicketMedio = total.Div(decimal.NewFromInt(int64(stats.NumCompras))).InexactFloat64()
	}
	for _, group := range spendByCategory.values() {
		stats.GastosPorCategoria = append(stats.GastosPorCategoria, *group)
	}
	return stats, nil
}

func (s *ReportService) monthlyTotals(ctx context.Context, now time.Time) ([]dto.MonthlyTotal, error) {
	first := time.Date(now.Year(), now.Month()-(dashboardMonths-1), 1, 0, 0, 0, 0, now.Location())
	last := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)

	purchases, err := s.reports.FindPurchases(ctx, repository.PurchaseFilter{From: &first, To: &last})
	if err != nil {
		return nil, WrapError("report.dashboard", ErrPersistence, err)
	}

	sums := make(map[string]decimal.Decimal, dashboardMonths)
	for _, p := range purchases {
		key := p.PurchaseDate.In(now.Location()).Format("2006-01")
		sums[key] = sums[key].Add(p.TotalAmount)
	}

	months := make([]dto.MonthlyTotal, 0, dashboardMonths)
	for i := 0; i < dashboardMonths; i++ {
		month := first.AddDate(0, i, 0)
		months = append(months, dto.MonthlyTotal{
			Month: monthLabel(month),
			Value: sums[month.Format("2006-01")].InexactFloat64(),
		})
	}
	return months, nil
}

// monthLabel renders a month the way pt-BR short dates do, e.g. "mar/25".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s/%02d", ptBRShortMonths[t.Month()-1], t.Year()%100)
}

// CategoryDetails reports per-product spending of a category's products
// over the last periodDays, biggest spend first.
func (s *ReportService) CategoryDetails(ctx context.Context, categoryID uuid.UUID, periodDays int) (*dto.CategoryDetails, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	now := s.now()
	from := now.AddDate(0, 0, -periodDays)

	products, err := s.products.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, WrapError("report.category", ErrPersistence, err)
	}
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	items, err := s.reports.FindItemsByProducts(ctx, ids, from, now)
	if err != nil {
		return nil, WrapError("report.category", ErrPersistence, err)
	}
	byProduct := make(map[uuid.UUID][]*models.PurchaseItem, len(products))
	for _, item := range items {
		byProduct[item.ProductID] = append(byProduct[item.ProductID], item)
	}

	details := &dto.CategoryDetails{
		CategoryID: categoryID.String(),
		Period:     periodDays,
		Products:   make([]dto.ProductDetails, 0, len(products)),
	}
	for _, p := range products {
		productItems := byProduct[p.ID]
		sortItemsByDateDesc(productItems)

		quantity, value := decimal.Zero, decimal.Zero
		for _, item := range productItems {
			quantity = quantity.Add(item.Quantity)
			value = value.Add(item.TotalPrice)
		}

		detail := dto.ProductDetails{
			ID:              p.ID.String(),
			Name:            p.Name,
			TotalQuantity:   quantity.InexactFloat64(),
			TotalValue:      value.InexactFloat64(),
			Purchases:       len(productItems),
			AvgPrice:        ratio(value, quantity),
			RecentPurchases: make([]dto.RecentPurchase, 0, recentPurchaseCount),
		}
		for i, item := range productItems {
			if i == recentPurchaseCount {
				break
			}
			detail.RecentPurchases = append(detail.RecentPurchases, dto.RecentPurchase{
				Date:       item.Purchase.PurchaseDate,
				Supplier:   item.Purchase.SupplierName,
				Quantity:   item.Quantity.InexactFloat64(),
				UnitPrice:  item.UnitPrice.InexactFloat64(),
				TotalPrice: item.TotalPrice.InexactFloat64(),
			})
		}

		details.Products = append(details.Products, detail)
		details.Totals.Value += detail.TotalValue
		details.Totals.Quantity += detail.TotalQuantity
		details.Totals.Purchases += detail.Purchases
	}
	details.Totals.Products = len(details.Products)

	sort.SliceStable(details.Products, func(i, j int) bool {
		return details.Products[i].TotalValue > details.Products[j].TotalValue
	})
	return details, nil
}

// ProductHistory lists the most recent purchases of items whose name
// contains productName, with price statistics overall and per supplier.
func (s *ReportService) ProductHistory(ctx context.Context, productName string, limit int) (*dto.ProductHistory, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, newUserError(ErrValidation, msgProductNameRequired)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	items, err := s.reports.FindItemsByProductName(ctx, productName, limit)
	if err != nil {
		return nil, WrapError("report.history", ErrPersistence, err)
	}

	history := &dto.ProductHistory{
		ProductName:   productName,
		History:       make([]dto.ProductHistoryItem, 0, len(items)),
		PorFornecedor: make([]dto.SupplierPriceStats, 0),
	}
	history.Stats.Fornecedores = make([]string, 0)

	quantity, value, unitPrices := decimal.Zero, decimal.Zero, decimal.Zero
	seenSupplier := make(map[string]bool)
	bySupplier := newOrderedGroups[*supplierAccumulator]()

	for i, item := range items {
		purchase := item.Purchase
		quantity = quantity.Add(item.Quantity)
		value = value.Add(item.TotalPrice)
		unitPrices = unitPrices.Add(item.UnitPrice)

		price := item.UnitPrice.InexactFloat64()
		if i == 0 || price < history.Stats.PrecoMinimo {
			history.Stats.PrecoMinimo = price
		}
		if i == 0 || price > history.Stats.PrecoMaximo {
			history.Stats.PrecoMaximo = price
		}
		if !seenSupplier[purchase.SupplierName] {
			seenSupplier[purchase.SupplierName] = true
			history.Stats.Fornecedores = append(history.Stats.Fornecedores, purchase.SupplierName)
		}

		acc := bySupplier.get(purchase.SupplierName, func() *supplierAccumulator {
			return &supplierAccumulator{name: purchase.SupplierName, cnpj: purchase.SupplierCNPJ, last: purchase.PurchaseDate}
		})
		acc.count++
		acc.quantity = acc.quantity.Add(item.Quantity)
		acc.value = acc.value.Add(item.TotalPrice)

		history.History = append(history.History, dto.ProductHistoryItem{
			ID:            item.ID.String(),
			Produto:       item.ProductName,
			Data:          purchase.PurchaseDate,
			Fornecedor:    purchase.SupplierName,
			CNPJ:          purchase.SupplierCNPJ,
			Quantidade:    item.Quantity.InexactFloat64(),
			Unidade:       item.Unit,
			PrecoUnitario: price,
			PrecoTotal:    item.TotalPrice.InexactFloat64(),
			Desconto:      item.DiscountAmount.InexactFloat64(),
			Categoria:     categoryName(item.Category),
			PurchaseID:    item.PurchaseID.String(),
		})
	}

	history.Stats.TotalCompras = len(items)
	history.Stats.QuantidadeTotal = quantity.InexactFloat64()
	history.Stats.ValorTotal = value.InexactFloat64()
	if len(items) > 0 {
		history.Stats.PrecoMedio = unitPrices.Div(decimal.NewFromInt(int64(len(items)))).InexactFloat64()
	}

	for _, acc := range bySupplier.values() {
		history.PorFornecedor = append(history.PorFornecedor, dto.SupplierPriceStats{
			Nome:            acc.name,
			CNPJ:            acc.cnpj,
			Compras:         acc.count,
			QuantidadeTotal: acc.quantity.InexactFloat64(),
			ValorTotal:      acc.value.InexactFloat64(),
			PrecoMedio:      ratio(acc.value, acc.quantity),
			UltimaCompra:    acc.last,
		})
	}
	return history, nil
}

type supplierAccumulator struct {
	name     string
	cnpj     *string
	count    int
	items    int
	quantity decimal.Decimal
	value    decimal.Decimal
	last     time.Time
}

// ProductSearch groups items by product name, most frequently bought
// first. An empty query returns the most bought names.
func (s *ReportService) ProductSearch(ctx context.Context, query string, limit int) (*dto.ProductSearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	trimmed := strings.TrimSpace(query)

	usages, err := s.reports.SearchProductNames(ctx, trimmed, limit)
	if err != nil {
		return nil, WrapError("report.search", ErrPersistence, err)
	}

	result := &dto.ProductSearchResult{
		Query:    query,
		Products: make([]dto.ProductSearchHit, 0, len(usages)),
	}
	if trimmed == "" {
		result.Query = ""
	}
	for _, u := range usages {
		result.Products = append(result.Products, dto.ProductSearchHit{
			Name:          u.Name,
			Count:         u.Count,
			TotalQuantity: u.TotalQuantity.InexactFloat64(),
		})
	}
	return result, nil
}

// PurchasesByPeriod reports purchases matching q with groupings by product,
// supplier and category, each sorted by value descending.
func (s *ReportService) PurchasesByPeriod(ctx context.Context, q PeriodQuery) (*dto.PeriodReport, error) {
	filter := repository.PurchaseFilter{
		Supplier:     strings.TrimSpace(q.Supplier),
		CategoryName: strings.TrimSpace(q.Category),
		ProductName:  strings.TrimSpace(q.ProductName),
	}
	if q.StartDate != "" {
		from, err := parseQueryDate(q.StartDate, false)
		if err != nil {
			return nil, newUserError(ErrValidation, "startDate inválida")
		}
		filter.From = &from
	}
	if q.EndDate != "" {
		to, err := parseQueryDate(q.EndDate, true)
		if err != nil {
			return nil, newUserError(ErrValidation, "endDate inválida")
		}
		filter.To = &to
	}

	purchases, err := s.reports.FindPurchases(ctx, filter)
	if err != nil {
		return nil, WrapError("report.period", ErrPersistence, err)
	}

	report := &dto.PeriodReport{
		Periodo: dto.PeriodRange{
			Inicio: orDefault(q.StartDate, periodStartLabel),
			Fim:    orDefault(q.EndDate, periodEndLabel),
		},
		Compras: make([]dto.PeriodPurchase, 0, len(purchases)),
	}

	total, quantity := decimal.Zero, decimal.Zero
	suppliers := newOrderedGroups[*supplierAccumulator]()
	products := newOrderedGroups[*productAccumulator]()
	categories := newOrderedGroups[*categoryAccumulator]()

	for _, p := range purchases {
		total = total.Add(p.TotalAmount)

		supplier := suppliers.get(p.SupplierName, func() *supplierAccumulator {
			return &supplierAccumulator{name: p.SupplierName, cnpj: p.SupplierCNPJ}
		})
		supplier.count++
		supplier.value = supplier.value.Add(p.TotalAmount)
		supplier.items += len(p.Items)

		entry := dto.PeriodPurchase{
			ID:         p.ID.String(),
			Data:       p.PurchaseDate,
			Fornecedor: p.SupplierName,
			CNPJ:       p.SupplierCNPJ,
			Total:      p.TotalAmount.InexactFloat64(),
			Itens:      len(p.Items),
			Items:      make([]dto.PeriodItem, 0, len(p.Items)),
		}

		for _, item := range p.Items {
			quantity = quantity.Add(item.Quantity)
			report.Stats.TotalItens++

			entry.Items = append(entry.Items, dto.PeriodItem{
				Nome:          item.ProductName,
				Quantidade:    item.Quantity.InexactFloat64(),
				Unidade:       item.Unit,
				PrecoUnitario: item.UnitPrice.InexactFloat64(),
				PrecoTotal:    item.TotalPrice.InexactFloat64(),
				Categoria:     categoryName(item.Category),
			})

			product := products.get(item.ProductName, func() *productAccumulator {
				return &productAccumulator{name: item.ProductName, category: categoryName(item.Category)}
			})
			product.add(item, p.SupplierName)

			category := categories.get(categoryName(item.Category), func() *categoryAccumulator {
				return &categoryAccumulator{name: categoryName(item.Category), color: categoryColor(item.Category)}
			})
			category.add(item)
		}
		report.Compras = append(report.Compras, entry)
	}

	report.Stats.TotalCompras = len(purchases)
	report.Stats.ValorTotal = total.InexactFloat64()
	report.Stats.QuantidadeTotal = quantity.InexactFloat64()
	report.Stats.Fornecedores = suppliers.len()

	report.PorProduto = make([]dto.ProductGroup, 0, products.len())
	for _, acc := range products.values() {
		report.PorProduto = append(report.PorProduto, acc.group())
	}
	sort.SliceStable(report.PorProduto, func(i, j int) bool {
		return report.PorProduto[i].ValorTotal > report.PorProduto[j].ValorTotal
	})

	report.PorFornecedor = make([]dto.SupplierGroup, 0, suppliers.len())
	for _, acc := range suppliers.values() {
		report.PorFornecedor = append(report.PorFornecedor, dto.SupplierGroup{
			Nome:       acc.name,
			CNPJ:       acc.cnpj,
			Compras:    acc.count,
			ValorTotal: acc.value.InexactFloat64(),
			ItensTotal: acc.items,
		})
	}
	sort.SliceStable(report.PorFornecedor, func(i, j int) bool {
		return report.PorFornecedor[i].ValorTotal > report.PorFornecedor[j].ValorTotal
	})

	report.PorCategoria = categoryGroups(categories)
	return report, nil
}

// Summary aggregates the current week, month or year and, when compare is
// set, the period before it.
func (s *ReportService) Summary(ctx context.Context, kind string, compare bool) (*dto.SummaryReport, error) {
	if kind != SummaryWeek && kind != SummaryYear {
		kind = SummaryMonth
	}
	now := s.now()
	current := periodBounds(kind, now)

	currentData, err := s.aggregate(ctx, current)
	if err != nil {
		return nil, err
	}

	report := &dto.SummaryReport{
		Tipo:    kind,
		Periodo: dto.SummaryPeriods{Atual: current},
		Dados:   *currentData,
	}
	if !compare {
		return report, nil
	}

	previous := periodBounds(kind, previousReference(kind, now))
	previousData, err := s.aggregate(ctx, previous)
	if err != nil {
		return nil, err
	}

	report.Periodo.Anterior = &previous
	report.Comparacao = &dto.Comparison{
		Compras:     variation(float64(currentData.TotalCompras), float64(previousData.TotalCompras)),
		Valor:       variation(currentData.TotalValor, previousData.TotalValor),
		TicketMedio: variation(currentData.TicketMedio, previousData.TicketMedio),
	}
	return report, nil
}

func (s *ReportService) aggregate(ctx context.Context, period dto.TimeRange) (*dto.SummaryData, error) {
	purchases, err := s.reports.FindPurchases(ctx, repository.PurchaseFilter{From: &period.Inicio, To: &period.Fim})
	if err != nil {
		return nil, WrapError("report.summary", ErrPersistence, err)
	}

	total, quantity := decimal.Zero, decimal.Zero
	items := 0
	products := newOrderedGroups[*productAccumulator]()
	suppliers := newOrderedGroups[*supplierAccumulator]()
	categories := newOrderedGroups[*categoryAccumulator]()

	for _, p := range purchases {
		total = total.Add(p.TotalAmount)
		supplier := suppliers.get(p.SupplierName, func() *supplierAccumulator {
			return &supplierAccumulator{name: p.SupplierName, cnpj: p.SupplierCNPJ}
		})
		supplier.count++
		supplier.value = supplier.value.Add(p.TotalAmount)

		for _, item := range p.Items {
			items++
			quantity = quantity.Add(item.Quantity)
			products.get(item.ProductName, func() *productAccumulator {
				return &productAccumulator{name: item.ProductName}
			}).add(item, p.SupplierName)
			categories.get(categoryName(item.Category), func() *categoryAccumulator {
				return &categoryAccumulator{name: categoryName(item.Category), color: categoryColor(item.Category)}
			}).add(item)
		}
	}

	data := &dto.SummaryData{
		TotalCompras:    len(purchases),
		TotalValor:      total.InexactFloat64(),
		TotalItens:      items,
		TotalQuantidade: quantity.InexactFloat64(),
		TopProdutos:     make([]dto.TopProduct, 0),
		TopFornecedores: make([]dto.TopSupplier, 0),
	}
	if len(purchases) > 0 {
		data.TicketMedio = total.Div(decimal.NewFromInt(int64(len(purchases)))).InexactFloat64()
	}

	for _, acc := range products.values() {
		data.TopProdutos = append(data.TopProdutos, dto.TopProduct{
			Nome:       acc.name,
			Quantidade: acc.quantity.InexactFloat64(),
			ValorTotal: acc.value.InexactFloat64(),
			Compras:    acc.count,
		})
	}
	sort.SliceStable(data.TopProdutos, func(i, j int) bool {
		return data.TopProdutos[i].ValorTotal > data.TopProdutos[j].ValorTotal
	})
	data.TopProdutos = data.TopProdutos[:min(len(data.TopProdutos), topListSize)]

	for _, acc := range suppliers.values() {
		data.TopFornecedores = append(data.TopFornecedores, dto.TopSupplier{
			Nome:       acc.name,
			CNPJ:       acc.cnpj,
			Compras:    acc.count,
			ValorTotal: acc.value.InexactFloat64(),
		})
	}
	sort.SliceStable(data.TopFornecedores, func(i, j int) bool {
		return data.TopFornecedores[i].ValorTotal > data.TopFornecedores[j].ValorTotal
	})
	data.TopFornecedores = data.TopFornecedores[:min(len(data.TopFornecedores), topListSize)]

	data.PorCategoria = categoryGroups(categories)
	return data, nil
}

// CalcVariation is the percentage change from previous to current. A
// change from zero counts as 100% when current is positive.
func CalcVariation(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

func variation(current, previous float64) dto.Variation {
	return dto.Variation{
		Atual:    current,
		Anterior: previous,
		Variacao: CalcVariation(current, previous),
	}
}

// periodBounds returns the calendar week (Sunday first), month or year
// containing ref, inclusive at both ends.
func periodBounds(kind string, ref time.Time) dto.TimeRange {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	var start, next time.Time
	switch kind {
	case SummaryWeek:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		next = start.AddDate(0, 0, 7)
	case SummaryYear:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		next = start.AddDate(1, 0, 0)
	default:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		next = start.AddDate(0, 1, 0)
	}
	return dto.TimeRange{Inicio: start, Fim: next.Add(-time.Millisecond)}
}

func previousReference(kind string, now time.Time) time.Time {
	switch kind {
	case SummaryWeek:
		return now.AddDate(0, 0, -7)
	case SummaryYear:
		return time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	}
}

// parseQueryDate reads a YYYY-MM-DD or RFC 3339 query value. A bare end
// date covers the whole day.
func parseQueryDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(canonicalDateForm, value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return t, nil
}

func sortItemsByDateDesc(items []*models.PurchaseItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Purchase.PurchaseDate.After(items[j].Purchase.PurchaseDate)
	})
}

func ratio(value, quantity decimal.Decimal) float64 {
	if quantity.IsZero() {
		return 0
	}
	return value.Div(quantity).InexactFloat64()
}

func categoryName(c *models.Category) string {
	if c == nil || c.Name == "" {
		return models.UncategorizedName
	}
	return c.Name
}

func categoryColor(c *models.Category) string {
	if c == nil || c.Color == "" {
		return models.UncategorizedColor
	}
	return c.Color
}

type productAccumulator struct {
	name      string
	category  string
	count     int
	quantity  decimal.Decimal
	value     decimal.Decimal
	suppliers []string
	seen      map[string]bool
}

func (a *productAccumulator) add(item *models.PurchaseItem, supplier string) {
	a.count++
	a.quantity = a.quantity.Add(item.Quantity)
	a.value = a.value.Add(item.TotalPrice)
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	if !a.seen[supplier] {
		a.seen[supplier] = true
		a.suppliers = append(a.suppliers, supplier)
	}
}

func (a *productAccumulator) group() dto.ProductGroup {
	suppliers := a.suppliers
	if suppliers == nil {
		suppliers = []string{}
	}
	return dto.ProductGroup{
		Nome:            a.name,
		Categoria:       a.category,
		Compras:         a.count,
		QuantidadeTotal: a.quantity.InexactFloat64(),
		ValorTotal:      a.value.InexactFloat64(),
		PrecoMedio:      ratio(a.value, a.quantity),
		Fornecedores:    suppliers,
	}
}

type categoryAccumulator struct {
	name  string
	color string
	items int
	value decimal.Decimal
}

func (a *categoryAccumulator) add(item *models.PurchaseItem) {
	a.items++
	a.value = a.value.Add(item.TotalPrice)
}

func categoryGroups(groups *orderedGroups[*categoryAccumulator]) []dto.CategoryGroup {
	out := make([]dto.CategoryGroup, 0, groups.len())
	for _, acc := range groups.values() {
		out = append(out, dto.CategoryGroup{
			Nome:       acc.name,
			Cor:        acc.color,
			Itens:      acc.items,
			ValorTotal: acc.value.InexactFloat64(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValorTotal > out[j].ValorTotal
	})
	return out
}

// orderedGroups is a map that remembers insertion order, so groups with
// equal totals keep the order in which they were first seen.
type orderedGroups[V any] struct {
	index map[string]V
	order []string
}

func newOrderedGroups[V any]() *orderedGroups[V] {
	return &orderedGroups[V]{index: make(map[string]V)}
}

func (g *orderedGroups[V]) get(key string, create func() V) V {
	if v, ok := g.index[key]; ok {
		return v
	}
	v := create()
	g.index[key] = v
	g.order = append(g.order, key)
	return v
}

func (g *orderedGroups[V]) values() []V {
	out := make([]V, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.index[key])
	}
	return out
}

func (g *orderedGroups[V]) len() int {
	return len(g.order)
}
