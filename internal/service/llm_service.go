package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"purchase-control/internal/dto"
	"purchase-control/pkg/config"
	"purchase-control/pkg/metrics"
	"purchase-control/pkg/resilience"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	opExtract      = "extract"
	opExtractRetry = "extract_retry"
	opChat         = "chat"
)

// CompletionRequest is a single-turn JSON completion, optionally carrying
// an image.
type CompletionRequest struct {
	Operation    string
	Prompt       string
	ImageDataURL string
	MaxTokens    int
}

// LLMService talks to an OpenAI-compatible chat completion provider. JSON
// extraction goes through the go-openai client; the chat relay reads the
// raw event stream so that malformed frames can be skipped one by one.
type LLMService struct {
	client     *openai.Client
	httpClient *http.Client
	config     *config.LLMConfig
	executor   *resilience.Executor
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewLLMService(cfg *config.LLMConfig, httpClient *http.Client, executor *resilience.Executor, m *metrics.Metrics, logger *zap.Logger) *LLMService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = httpClient

	return &LLMService{
		client:     openai.NewClientWithConfig(clientConfig),
		httpClient: httpClient,
		config:     cfg,
		executor:   executor,
		metrics:    m,
		logger:     logger,
	}
}

// CompleteJSON runs a JSON-mode completion with the extraction model and
// returns the raw message content.
func (s *LLMService) CompleteJSON(ctx context.Context, req CompletionRequest) (string, error) {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.ImageDataURL != "" {
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: req.ImageDataURL}},
		}
	} else {
		message.Content = req.Prompt
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     s.config.ExtractionModel,
		Messages:  []openai.ChatCompletionMessage{message},
		MaxTokens: req.MaxTokens,
		// zero is dropped by omitempty, which would leave the provider default
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var content string
	start := time.Now()
	err := s.execute(ctx, req.Operation, func(callCtx context.Context) error {
		resp, err := s.client.CreateChatCompletion(callCtx, chatReq)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyResponse
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	s.metrics.ObserveLLMCall(req.Operation, time.Since(start), err)
	if err != nil {
		return "", classifyProviderError(req.Operation, err)
	}

	s.logger.Debug("LLM completion received",
		zap.String("operation", req.Operation),
		zap.Int("content_length", len(content)),
	)
	return content, nil
}

type streamRequest struct {
	Model     string            `json:"model"`
	Messages  []dto.ChatMessage `json:"messages"`
	Stream    bool              `json:"stream"`
	MaxTokens int               `json:"max_tokens,omitempty"`
}

// OpenChatStream starts a streamed completion with the chat model and
// returns the provider's event stream body. The body is bound to ctx:
// cancelling ctx aborts the upstream request. The caller closes the body.
func (s *LLMService) OpenChatStream(ctx context.Context, messages []dto.ChatMessage, maxTokens int) (io.ReadCloser, error) {
	payload, err := json.Marshal(streamRequest{
		Model:     s.config.ChatModel,
		Messages:  messages,
		Stream:    true,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	var body io.ReadCloser
	start := time.Now()
	err = s.execute(ctx, opChat, func(context.Context) error {
		// The executor's deadline would cut the stream short once this
		// function returns, so the request lives on ctx instead.
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.chatCompletionsURL(), bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

		resp, err := s.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &openai.RequestError{
				HTTPStatus:     resp.Status,
				HTTPStatusCode: resp.StatusCode,
				Err:            fmt.Errorf("%s", strings.TrimSpace(string(detail))),
				Body:           detail,
			}
		}
		body = resp.Body
		return nil
	})
	s.metrics.ObserveLLMCall(opChat, time.Since(start), err)
	if err != nil {
		return nil, classifyProviderError(opChat, err)
	}
	return body, nil
}

func (s *LLMService) chatCompletionsURL() string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
}

func (s *LLMService) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.executor == nil {
		return fn(ctx)
	}
	return s.executor.Execute(ctx, "llm_"+operation, fn, classifyForBreaker)
}

// classifyForBreaker keeps client errors and cancellations from tripping
// the breaker; only provider-side failures count.
func classifyForBreaker(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyResponse) {
		return resilience.ErrorClassification{RecordFailure: false}
	}
	if status := providerStatus(err); status >= 400 && status < 500 && status != http.StatusTooManyRequests {
		return resilience.ErrorClassification{RecordFailure: false}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

func providerStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func classifyProviderError(op string, err error) error {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return WrapError(op, ErrEmptyResponse, nil)
	case resilience.IsCircuitOpen(err):
		return WrapError(op, ErrUpstreamHTTP, fmt.Errorf("provider temporarily disabled: %w", err))
	}
	if status := providerStatus(err); status != 0 {
		return WrapError(op, ErrUpstreamHTTP, fmt.Errorf("status %d: %w", status, err))
	}
	return WrapError(op, ErrUpstreamHTTP, err)
}
