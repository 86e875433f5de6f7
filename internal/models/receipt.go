package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OCRStatus string

const (
	OCRStatusPending    OCRStatus = "pending"
	OCRStatusProcessing OCRStatus = "processing"
	OCRStatusCompleted  OCRStatus = "completed"
	OCRStatusError      OCRStatus = "error"
)

// IsTerminal reports whether no further status transition is allowed.
func (s OCRStatus) IsTerminal() bool {
	return s == OCRStatusCompleted || s == OCRStatusError
}

// Receipt is one uploaded source document and its OCR lifecycle.
type Receipt struct {
	ID          uuid.UUID       `db:"id"`
	FileURL     string          `db:"file_url"` // storage key
	FileName    string          `db:"file_name"`
	FileSize    int64           `db:"file_size"`
	FileType    string          `db:"file_type"`
	OCRStatus   OCRStatus       `db:"ocr_status"`
	OCRResult   json.RawMessage `db:"ocr_result"`
	ProcessedAt *time.Time      `db:"processed_at"`
	PurchaseID  *uuid.UUID      `db:"purchase_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
