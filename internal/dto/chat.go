package dto

const (
	ChatActionStart    = "start"
	ChatActionContinue = "continue"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"dive"`
	OCRData  *OCRData      `json:"ocrData" validate:"required"`
	Action   string        `json:"action" validate:"omitempty,oneof=start continue"`
}

// ChatChunk is one frame of the validation chat event stream.
type ChatChunk struct {
	Content string `json:"content"`
}
