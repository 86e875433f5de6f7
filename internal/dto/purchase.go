package dto

import "time"

type SavePurchaseRequest struct {
	ReceiptID string        `json:"receiptId" validate:"required,uuid"`
	OCRData   *OCRData      `json:"ocrData" validate:"required"`
	Messages  []ChatMessage `json:"messages"`
}

type SavePurchaseResponse struct {
	Success    bool   `json:"success"`
	PurchaseID string `json:"purchaseId"`
}

type PurchaseResponse struct {
	ID            string                 `json:"id"`
	SupplierName  string                 `json:"supplierName"`
	SupplierCNPJ  *string                `json:"supplierCnpj"`
	PurchaseDate  time.Time              `json:"purchaseDate"`
	TotalAmount   float64                `json:"totalAmount"`
	PaymentMethod *string                `json:"paymentMethod"`
	Status        string                 `json:"status"`
	ItemCount     int                    `json:"itemCount"`
	Items         []PurchaseItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

type PurchaseItemResponse struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"productId"`
	ProductName    string  `json:"productName"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	UnitPrice      float64 `json:"unitPrice"`
	TotalPrice     float64 `json:"totalPrice"`
	DiscountAmount float64 `json:"discountAmount"`
	CategoryID     *string `json:"categoryId"`
}
