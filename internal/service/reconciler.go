package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/internal/models"
)

const (
	UnnamedItem       = "Item Sem Nome"
	NoItemsWarning    = "Nenhum item foi extraído. Verifique se a imagem está legível."
	canonicalDateForm = "2006-01-02"
)

// RawExtraction is the loosely typed object a model returned. It only lives
// between the provider response and Reconcile.
type RawExtraction map[string]any

// Candidate keys per canonical field, tried in order. The first candidate
// holding a usable value wins; empty strings, zero and null fall through.
var (
	supplierNameKeys = []string{"supplier_name", "fornecedor", "supplier", "supplierName"}
	supplierCNPJKeys = []string{"cnpj", "supplier_cnpj", "supplierCnpj"}
	purchaseDateKeys = []string{"date", "data", "purchase_date", "purchaseDate"}
	totalAmountKeys  = []string{"total", "total_amount", "valor_total", "totalAmount"}
	paymentKeys      = []string{"payment_method", "forma_pagamento", "paymentMethod"}
	itemListKeys     = []string{"items", "itens", "produtos"}

	itemNameKeys       = []string{"name", "produto", "description", "nome"}
	itemQuantityKeys   = []string{"quantity", "quantidade", "qtd"}
	itemUnitPriceKeys  = []string{"unit_price", "preco_unitario", "valor_unitario", "price", "unitPrice"}
	itemTotalPriceKeys = []string{"total_price", "preco_total", "valor_total", "total", "totalPrice"}
)

var leadingNumber = regexp.MustCompile(`^[-+]?[\d.,]+`)

var dateLayouts = []string{
	canonicalDateForm,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/06",
	"02-01-2006",
	"02.01.2006",
}

// ParseRawExtraction decodes model output into a RawExtraction. Only a JSON
// object is accepted.
func ParseRawExtraction(content string) (RawExtraction, error) {
	var raw RawExtraction
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return raw, nil
}

// Items returns the first non-empty item list of the extraction. An empty
// "items" array falls through to "itens" and "produtos" on purpose: models
// sometimes emit an empty English key next to a filled Portuguese one.
func (r RawExtraction) Items() []map[string]any {
	return itemList(r, itemListKeys)
}

// Reconcile maps a raw extraction onto the canonical record. It never
// fails: missing or malformed fields take their defaults. today supplies
// the fallback purchase date.
func Reconcile(raw RawExtraction, today time.Time) *dto.OCRData {
	out := &dto.OCRData{
		SupplierName: models.UnknownSupplier,
		PurchaseDate: today.Format(canonicalDateForm),
		Items:        make([]dto.OCRItem, 0),
	}

	if s, ok := firstString(raw, supplierNameKeys); ok {
		out.SupplierName = s
	}
	if s, ok := firstString(raw, supplierCNPJKeys); ok {
		out.SupplierCNPJ = &s
	}
	if s, ok := firstString(raw, purchaseDateKeys); ok {
		out.PurchaseDate = normalizeDate(s)
	}
	if n, ok := firstNumber(raw, totalAmountKeys); ok {
		out.TotalAmount = n
	}
	if s, ok := firstString(raw, paymentKeys); ok {
		out.PaymentMethod = &s
	}

	for _, item := range raw.Items() {
		out.Items = append(out.Items, reconcileItem(item))
	}

	if len(out.Items) == 0 {
		out.Warning = NoItemsWarning
	}
	return out
}

func reconcileItem(item map[string]any) dto.OCRItem {
	out := dto.OCRItem{
		Name:     UnnamedItem,
		Quantity: 1,
	}
	if s, ok := firstString(item, itemNameKeys); ok {
		out.Name = s
	}
	if n, ok := firstNumber(item, itemQuantityKeys); ok {
		out.Quantity = n
	}
	if n, ok := firstNumber(item, itemUnitPriceKeys); ok {
		out.UnitPrice = n
	}
	if n, ok := firstNumber(item, itemTotalPriceKeys); ok {
		out.TotalPrice = n
	}
	return out
}

func firstString(obj map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(sanitizeUTF8(v)); s != "" {
				return s, true
			}
		case float64:
			if v != 0 {
				return strconv.FormatFloat(v, 'f', -1, 64), true
			}
		case json.Number:
			if s := v.String(); s != "" && s != "0" {
				return s, true
			}
		}
	}
	return "", false
}

func firstNumber(obj map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		if n, ok := toNumber(obj[key]); ok && n != 0 {
			return n, true
		}
	}
	return 0, false
}

// itemList skips empty arrays, unlike a plain first-present lookup.
func itemList(obj map[string]any, keys []string) []map[string]any {
	for _, key := range keys {
		list, ok := obj[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		items := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// toNumber coerces JSON numbers and numeric strings, including Brazilian
// formatting such as "R$ 1.234,56".
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		return parseLocaleNumber(n)
	}
	return 0, false
}

// parseLocaleNumber reads the leading number of s, so units and suffixes
// such as "2 UN", "18,90/kg" or "15,00 F" keep their value.
func parseLocaleNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimRight(leadingNumber.FindString(s), ".,")
	if s == "" || s == "-" || s == "+" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
		if strings.Count(s, ".") > 1 {
			return 0, false
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeDate rewrites recognised date layouts to YYYY-MM-DD and leaves
// anything else untouched for ingestion to resolve.
func normalizeDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDateForm)
		}
	}
	return s
}
