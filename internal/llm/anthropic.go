package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/soyeahso/boardroom/internal/version"
)

// AnthropicClient streams completions through the Anthropic Messages API.
type AnthropicClient struct {
	baseURL   string
	maxTokens int
}

// NewAnthropicClient creates an Anthropic provider. An empty baseURL uses the SDK default.
func NewAnthropicClient(baseURL string, maxTokens int) *AnthropicClient {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{baseURL: baseURL, maxTokens: maxTokens}
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) client(apiKey string) anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", version.UserAgent()),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	return anthropic.NewClient(opts...)
}

func (c *AnthropicClient) params(req CompletionRequest) anthropic.MessageNewParams {
	system, msgs := splitSystem(req)

	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params
}

// Complete sends a non-streaming completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.APIKey == "" {
		return nil, missingKey(c.Name())
	}
	start := time.Now()
	client := c.client(req.APIKey)

	resp, err := client.Messages.New(ctx, c.params(req))
	if err != nil {
		return nil, c.wrapError(err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.AsText().Text)
		}
	}
	return &CompletionResponse{
		Content:    content.String(),
		StopReason: string(resp.StopReason),
		Model:      string(resp.Model),
		Duration:   time.Since(start),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// Stream sends a streaming completion request. Only text deltas are forwarded.
func (c *AnthropicClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	if req.APIKey == "" {
		return nil, missingKey(c.Name())
	}
	eventChan := make(chan StreamEvent)
	go c.streamRequest(ctx, eventChan, req)
	return eventChan, nil
}

func (c *AnthropicClient) streamRequest(ctx context.Context, eventChan chan<- StreamEvent, req CompletionRequest) {
	defer close(eventChan)

	start := time.Now()
	client := c.client(req.APIKey)
	stream := client.Messages.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	var full strings.Builder
	var usage Usage
	var stopReason, model string
	for stream.Next() {
		switch ev := stream.Current().AsAny().(type) {
		case anthropic.MessageStartEvent:
			model = string(ev.Message.Model)
			usage.InputTokens = int(ev.Message.Usage.InputTokens)
		case anthropic.ContentBlockDeltaEvent:
			text, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || text.Text == "" {
				continue
			}
			full.WriteString(text.Text)
			if !sendEvent(ctx, eventChan, StreamEvent{Type: EventDelta, Content: text.Text}) {
				return
			}
		case anthropic.MessageDeltaEvent:
			stopReason = string(ev.Delta.StopReason)
			usage.OutputTokens = int(ev.Usage.OutputTokens)
		}
	}
	if err := stream.Err(); err != nil {
		sendEvent(ctx, eventChan, errorEvent(c.wrapError(err)))
		return
	}

	sendEvent(ctx, eventChan, StreamEvent{
		Type: EventDone,
		Response: &CompletionResponse{
			Content:    full.String(),
			StopReason: stopReason,
			Usage:      usage,
			Model:      model,
			Duration:   time.Since(start),
		},
	})
}

func (c *AnthropicClient) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.Name(), Message: apiErr.Error(), Code: apiErr.StatusCode, cause: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("request failed: %v", err), cause: err}
}
