package dto

// OCRData is the canonical extraction of one receipt. It is the only shape
// of extracted data that reaches ingestion.
type OCRData struct {
	SupplierName  string    `json:"supplierName"`
	SupplierCNPJ  *string   `json:"supplierCnpj"`
	PurchaseDate  string    `json:"purchaseDate"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	Items         []OCRItem `json:"items"`
	Warning       string    `json:"warning,omitempty"`
}

type OCRItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}
