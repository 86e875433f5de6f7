package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"purchase-control/internal/dto"

	"go.uber.org/zap"
)

const (
	chatMaxTokens = 1500
	// provider frames can carry long deltas; bufio.Scanner's default 64KB is
	// not always enough
	maxStreamLine = 1 << 20

	MsgChatFailed = "Erro ao processar chat"
)

var (
	dataPrefix = []byte("data:")
	doneMarker = []byte("[DONE]")
	doneFrame  = []byte("data: [DONE]\n\n")
)

// ChatService relays the validation conversation. It keeps no state between
// calls and never changes the extraction it is given.
type ChatService struct {
	llm    ChatStreamer
	logger *zap.Logger
}

func NewChatService(llm ChatStreamer, logger *zap.Logger) *ChatService {
	return &ChatService{
		llm:    llm,
		logger: logger,
	}
}

// BuildMessages assembles the upstream conversation: a fresh system prompt
// with the extraction, the prior user/assistant turns, and the synthetic
// opening turn when the conversation starts.
func (s *ChatService) BuildMessages(req *dto.ChatRequest) []dto.ChatMessage {
	system := buildChatSystemPrompt(req.OCRData)
	start := req.Action == dto.ChatActionStart
	if start {
		system += chatStartInstruction
	}

	messages := make([]dto.ChatMessage, 0, len(req.Messages)+2)
	messages = append(messages, dto.ChatMessage{Role: "system", Content: system})
	for _, m := range req.Messages {
		if m.Role == "user" || m.Role == "assistant" {
			messages = append(messages, m)
		}
	}
	if start {
		messages = append(messages, dto.ChatMessage{Role: "user", Content: chatStartUserTurn})
	}
	return messages
}

// Open starts the upstream stream. It is separate from Relay so that a
// provider failure can still be answered with a plain error response.
func (s *ChatService) Open(ctx context.Context, req *dto.ChatRequest) (io.ReadCloser, error) {
	return s.llm.OpenChatStream(ctx, s.BuildMessages(req), chatMaxTokens)
}

// Relay copies content deltas from the provider stream to w as
// `data: {"content": ...}` frames, flushing each before reading on. Frames
// that do not parse are skipped. The relay always ends with `data: [DONE]`;
// a write error means the client is gone and is returned so the caller can
// cancel the upstream request.
func (s *ChatService) Relay(upstream io.Reader, w *bufio.Writer) error {
	scanner := bufio.NewScanner(upstream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	frames := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if bytes.Equal(payload, doneMarker) {
			break
		}

		content, ok := deltaContent(payload)
		if !ok {
			continue
		}
		if err := writeFrame(w, content); err != nil {
			return err
		}
		frames++
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("Chat upstream stream interrupted", zap.Error(err), zap.Int("frames", frames))
	}

	if _, err := w.Write(doneFrame); err != nil {
		return err
	}
	return w.Flush()
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func deltaContent(payload []byte) (string, bool) {
	var chunk streamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}

func writeFrame(w *bufio.Writer, content string) error {
	frame, err := json.Marshal(dto.ChatChunk{Content: content})
	if err != nil {
		return err
	}
	if _, err := w.WriteString("data: "); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
