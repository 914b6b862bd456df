package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/soyeahso/boardroom/internal/version"
)

// OpenAIClient streams chat completions through the OpenAI Chat Completions API
// or any endpoint that speaks it.
type OpenAIClient struct {
	baseURL   string
	maxTokens int
}

// NewOpenAIClient creates an OpenAI provider. An empty baseURL uses the SDK default.
func NewOpenAIClient(baseURL string, maxTokens int) *OpenAIClient {
	return &OpenAIClient{baseURL: baseURL, maxTokens: maxTokens}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) client(apiKey string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", version.UserAgent()),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	return openai.NewClient(opts...)
}

func (c *OpenAIClient) params(req CompletionRequest) openai.ChatCompletionNewParams {
	system, msgs := splitSystem(req)

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, m := range msgs {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	return params
}

// Complete sends a non-streaming completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.APIKey == "" {
		return nil, missingKey(c.Name())
	}
	start := time.Now()
	client := c.client(req.APIKey)

	resp, err := client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return nil, c.wrapError(err)
	}

	out := &CompletionResponse{
		Model:    resp.Model,
		Duration: time.Since(start),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.StopReason = resp.Choices[0].FinishReason
	}
	return out, nil
}

// Stream sends a streaming completion request. Chunks without text are skipped.
func (c *OpenAIClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	if req.APIKey == "" {
		return nil, missingKey(c.Name())
	}
	eventChan := make(chan StreamEvent)
	go c.streamRequest(ctx, eventChan, req)
	return eventChan, nil
}

func (c *OpenAIClient) streamRequest(ctx context.Context, eventChan chan<- StreamEvent, req CompletionRequest) {
	defer close(eventChan)

	start := time.Now()
	client := c.client(req.APIKey)
	stream := client.Chat.Completions.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	var full strings.Builder
	var stopReason, model string
	for stream.Next() {
		ck := stream.Current()
		if ck.Model != "" {
			model = ck.Model
		}
		for _, choice := range ck.Choices {
			if choice.FinishReason != "" {
				stopReason = choice.FinishReason
			}
			if choice.Delta.Content == "" {
				continue
			}
			full.WriteString(choice.Delta.Content)
			if !sendEvent(ctx, eventChan, StreamEvent{Type: EventDelta, Content: choice.Delta.Content}) {
				return
			}
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
			Model:      model,
			Duration:   time.Since(start),
		},
	})
}

func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.Name(), Message: apiErr.Error(), Code: apiErr.StatusCode, cause: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("request failed: %v", err), cause: err}
}
