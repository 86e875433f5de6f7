package dto

import "time"

// Dashboard

type DashboardStats struct {
	TotalGasto         float64         `json:"totalGasto"`
	NumCompras         int             `json:"numCompras"`
	TicketMedio        float64         `json:"ticketMedio"`
	GastosPorCategoria []CategorySpend `json:"gastosPorCategoria"`
	EvolucaoMensal     []MonthlyTotal  `json:"evolucaoMensal"`
}

type CategorySpend struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type MonthlyTotal struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Category details

type CategoryDetails struct {
	CategoryID string           `json:"categoryId"`
	Period     int              `json:"period"`
	Totals     CategoryTotals   `json:"totals"`
	Products   []ProductDetails `json:"products"`
}

type CategoryTotals struct {
	Value     float64 `json:"value"`
	Quantity  float64 `json:"quantity"`
	Purchases int     `json:"purchases"`
	Products  int     `json:"products"`
}

type ProductDetails struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	TotalQuantity   float64          `json:"totalQuantity"`
	TotalValue      float64          `json:"totalValue"`
	Purchases       int              `json:"purchases"`
	AvgPrice        float64          `json:"avgPrice"`
	RecentPurchases []RecentPurchase `json:"recentPurchases"`
}

type RecentPurchase struct {
	Date       time.Time `json:"date"`
	Supplier   string    `json:"supplier"`
	Quantity   float64   `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice"`
}

// Product history

type ProductHistory struct {
	ProductName   string               `json:"productName"`
	Stats         ProductHistoryStats  `json:"stats"`
	History       []ProductHistoryItem `json:"history"`
	PorFornecedor []SupplierPriceStats `json:"porFornecedor"`
}

type ProductHistoryStats struct {
	TotalCompras    int      `json:"totalCompras"`
	QuantidadeTotal float64  `json:"quantidadeTotal"`
	ValorTotal      float64  `json:"valorTotal"`
	PrecoMedio      float64  `json:"precoMedio"`
	PrecoMinimo     float64  `json:"precoMinimo"`
	PrecoMaximo     float64  `json:"precoMaximo"`
	Fornecedores    []string `json:"fornecedores"`
}

type ProductHistoryItem struct {
	ID            string    `json:"id"`
	Produto       string    `json:"produto"`
	Data          time.Time `json:"data"`
	Fornecedor    string    `json:"fornecedor"`
	CNPJ          *string   `json:"cnpj"`
	Quantidade    float64   `json:"quantidade"`
	Unidade       string    `json:"unidade"`
	PrecoUnitario float64   `json:"precoUnitario"`
	PrecoTotal    float64   `json:"precoTotal"`
	Desconto      float64   `json:"desconto"`
	Categoria     string    `json:"categoria"`
	PurchaseID    string    `json:"purchaseId"`
}

type SupplierPriceStats struct {
	Nome            string    `json:"nome"`
	CNPJ            *string   `json:"cnpj"`
	Compras         int       `json:"compras"`
	QuantidadeTotal float64   `json:"quantidadeTotal"`
	ValorTotal      float64   `json:"valorTotal"`
	PrecoMedio      float64   `json:"precoMedio"`
	UltimaCompra    time.Time `json:"ultimaCompra"`
}

// Product search

type ProductSearchResult struct {
	Query    string             `json:"query"`
	Products []ProductSearchHit `json:"products"`
}

type ProductSearchHit struct {
	Name          string  `json:"name"`
	Count         int     `json:"count"`
	TotalQuantity float64 `json:"totalQuantity"`
}

// Period report

type PeriodReport struct {
	Periodo       PeriodRange      `json:"periodo"`
	Stats         PeriodStats      `json:"stats"`
	Compras       []PeriodPurchase `json:"compras"`
	PorProduto    []ProductGroup   `json:"porProduto"`
	PorFornecedor []SupplierGroup  `json:"porFornecedor"`
	PorCategoria  []CategoryGroup  `json:"porCategoria"`
}

type PeriodRange struct {
	Inicio string `json:"inicio"`
	Fim    string `json:"fim"`
}

type PeriodStats struct {
	TotalCompras    int     `json:"totalCompras"`
	TotalItens      int     `json:"totalItens"`
	ValorTotal      float64 `json:"valorTotal"`
	QuantidadeTotal float64 `json:"quantidadeTotal"`
	Fornecedores    int     `json:"fornecedores"`
}

type PeriodPurchase struct {
	ID         string       `json:"id"`
	Data       time.Time    `json:"data"`
	Fornecedor string       `json:"fornecedor"`
	CNPJ       *string      `json:"cnpj"`
	Total      float64      `json:"total"`
	Itens      int          `json:"itens"`
	Items      []PeriodItem `json:"items"`
}

type PeriodItem struct {
	Nome          string  `json:"nome"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade"`
	PrecoUnitario float64 `json:"precoUnitario"`
	PrecoTotal    float64 `json:"precoTotal"`
	Categoria     string  `json:"categoria"`
}

type ProductGroup struct {
	Nome            string   `json:"nome"`
	Categoria       string   `json:"categoria"`
	Compras         int      `json:"compras"`
	QuantidadeTotal float64  `json:"quantidadeTotal"`
	ValorTotal      float64  `json:"valorTotal"`
	PrecoMedio      float64  `json:"precoMedio"`
	Fornecedores    []string `json:"fornecedores"`
}

type SupplierGroup struct {
	Nome       string  `json:"nome"`
	CNPJ       *string `json:"cnpj"`
	Compras    int     `json:"compras"`
	ValorTotal float64 `json:"valorTotal"`
	ItensTotal int     `json:"itensTotal"`
}

type CategoryGroup struct {
	Nome       string  `json:"nome"`
	Cor        string  `json:"cor"`
	Itens      int     `json:"itens"`
	ValorTotal float64 `json:"valorTotal"`
}

// Summary with period comparison

type SummaryReport struct {
	Tipo       string         `json:"tipo"`
	Periodo    SummaryPeriods `json:"periodo"`
	Dados      SummaryData    `json:"dados"`
	Comparacao *Comparison    `json:"comparacao"`
}

type SummaryPeriods struct {
	Atual    TimeRange  `json:"atual"`
	Anterior *TimeRange `json:"anterior"`
}

type TimeRange struct {
	Inicio time.Time `json:"inicio"`
	Fim    time.Time `json:"fim"`
}

type SummaryData struct {
	TotalCompras    int             `json:"totalCompras"`
	TotalValor      float64         `json:"totalValor"`
	TotalItens      int             `json:"totalItens"`
	TotalQuantidade float64         `json:"totalQuantidade"`
	TicketMedio     float64         `json:"ticketMedio"`
	TopProdutos     []TopProduct    `json:"topProdutos"`
	TopFornecedores []TopSupplier   `json:"topFornecedores"`
	PorCategoria    []CategoryGroup `json:"porCategoria"`
}

type TopProduct struct {
	Nome       string  `json:"nome"`
	Quantidade float64 `json:"quantidade"`
	ValorTotal float64 `json:"valorTotal"`
	Compras    int     `json:"compras"`
}

type TopSupplier struct {
	Nome       string  `json:"nome"`
	CNPJ       *string `json:"cnpj"`
	Compras    int     `json:"compras"`
	ValorTotal float64 `json:"valorTotal"`
}

type Comparison struct {
	Compras     Variation `json:"compras"`
	Valor       Variation `json:"valor"`
	TicketMedio Variation `json:"ticketMedio"`
}

type Variation struct {
	Atual    float64 `json:"atual"`
	Anterior float64 `json:"anterior"`
	Variacao float64 `json:"variacao"`
}
