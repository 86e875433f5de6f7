package service

import (
	"bytes"
	"context"

	"purchase-control/internal/dto"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetSummary    = "Resumo"
	sheetPurchases  = "Compras"
	sheetProducts   = "Produtos"
	sheetSuppliers  = "Fornecedores"
	sheetCategories = "Categorias"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportDateForm  = "02/01/2006"
)

// ExportPeriodXLSX builds the period report for q as a workbook with one
// sheet per grouping.
func (s *ReportService) ExportPeriodXLSX(ctx context.Context, q PeriodQuery) ([]byte, error) {
	report, err := s.PurchasesByPeriod(ctx, q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, WrapError("report.export", ErrPersistence, err)
	}
	for _, name := range []string{sheetPurchases, sheetProducts, sheetSuppliers, sheetCategories} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, WrapError("report.export", ErrPersistence, err)
		}
	}

	writers := []func(*excelize.File, *dto.PeriodReport) error{
		writeSummarySheet,
		writePurchasesSheet,
		writeProductsSheet,
		writeSuppliersSheet,
		writeCategoriesSheet,
	}
	for _, write := range writers {
		if err := write(f, report); err != nil {
			return nil, WrapError("report.export", ErrPersistence, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, WrapError("report.export", ErrPersistence, err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeSummarySheet(f *excelize.File, r *dto.PeriodReport) error {
	rows := [][]any{
		{"Início", r.Periodo.Inicio},
		{"Fim", r.Periodo.Fim},
		{"Compras", r.Stats.TotalCompras},
		{"Itens", r.Stats.TotalItens},
		{"Valor total", r.Stats.ValorTotal},
		{"Quantidade total", r.Stats.QuantidadeTotal},
		{"Fornecedores", r.Stats.Fornecedores},
	}
	if err := writeRows(f, sheetSummary, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "A", 20)
}

func writePurchasesSheet(f *excelize.File, r *dto.PeriodReport) error {
	rows := [][]any{{"Data", "Fornecedor", "CNPJ", "Produto", "Categoria", "Quantidade", "Unidade", "Preço unitário", "Preço total"}}
	for _, p := range r.Compras {
		cnpj := ""
		if p.CNPJ != nil {
			cnpj = *p.CNPJ
		}
		for _, item := range p.Items {
			rows = append(rows, []any{
				p.Data.Format(reportDateForm), p.Fornecedor, cnpj,
				item.Nome, item.Categoria, item.Quantidade, item.Unidade,
				item.PrecoUnitario, item.PrecoTotal,
			})
		}
	}
	if err := writeRows(f, sheetPurchases, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetPurchases, "B", "D", 30)
}

func writeProductsSheet(f *excelize.File, r *dto.PeriodReport) error {
	rows := [][]any{{"Produto", "Categoria", "Compras", "Quantidade", "Valor total", "Preço médio"}}
	for _, p := range r.PorProduto {
		rows = append(rows, []any{p.Nome, p.Categoria, p.Compras, p.QuantidadeTotal, p.ValorTotal, p.PrecoMedio})
	}
	if err := writeRows(f, sheetProducts, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetProducts, "A", "A", 30)
}

func writeSuppliersSheet(f *excelize.File, r *dto.PeriodReport) error {
	rows := [][]any{{"Fornecedor", "CNPJ", "Compras", "Itens", "Valor total"}}
	for _, s := range r.PorFornecedor {
		cnpj := ""
		if s.CNPJ != nil {
			cnpj = *s.CNPJ
		}
		rows = append(rows, []any{s.Nome, cnpj, s.Compras, s.ItensTotal, s.ValorTotal})
	}
	if err := writeRows(f, sheetSuppliers, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetSuppliers, "A", "B", 30)
}

func writeCategoriesSheet(f *excelize.File, r *dto.PeriodReport) error {
	rows := [][]any{{"Categoria", "Itens", "Valor total"}}
	for _, c := range r.PorCategoria {
		rows = append(rows, []any{c.Nome, c.Itens, c.ValorTotal})
	}
	return writeRows(f, sheetCategories, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
