package dto

type UploadResponse struct {
	Success          bool   `json:"success"`
	ReceiptID        string `json:"receiptId"`
	CloudStoragePath string `json:"cloudStoragePath"`
}

type ProcessOCRRequest struct {
	ReceiptID        string `json:"receiptId" validate:"required,uuid"`
	CloudStoragePath string `json:"cloudStoragePath"`
}

type ProcessOCRResponse struct {
	Success bool     `json:"success"`
	Data    *OCRData `json:"data"`
}

type OCRErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details"`
	Suggestion string `json:"suggestion"`
}
