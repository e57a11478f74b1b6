package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pageza/vinoteca/backend/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// CompletionRequest is a single system+user turn sent to the model.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	// JSON asks the provider to constrain the output to a JSON object.
	JSON bool
}

// TextStream yields the model's text deltas in order. Recv returns io.EOF when the
// model's turn ends.
type TextStream interface {
	Recv() (string, error)
	Close() error
}

// LLMClient starts streamed completions.
type LLMClient interface {
	Stream(ctx context.Context, req CompletionRequest) (TextStream, error)
}

// OpenAIConfig holds the model provider settings.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient streams chat completions from an OpenAI-compatible API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

var _ LLMClient = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg OpenAIConfig, log *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    log,
	}
}

func (c *OpenAIClient) Stream(ctx context.Context, req CompletionRequest) (TextStream, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		MaxTokens: req.MaxTokens,
		Stream:    true,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, parseAPIError(err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(c.model, "success").Inc()

	c.log.Debug("model stream opened", zap.String("model", c.model), zap.Int("max_tokens", req.MaxTokens))
	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

// Recv skips chunks that carry no content, such as the leading role-only delta.
func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", parseAPIError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *openAIStream) Close() error {
	s.stream.Close()
	return nil
}

// parseAPIError wraps provider errors with ErrModelUnavailable, keeping the status and
// message when the provider returned them.
func parseAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("model API error %d: %s: %w", reqErr.HTTPStatusCode, errorDetail(reqErr.Body), ErrModelUnavailable)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, ErrModelUnavailable)
	}

	return fmt.Errorf("model request failed: %v: %w", err, ErrModelUnavailable)
}

func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(body)
}
