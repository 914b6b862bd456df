package llm

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	StreamFunc   func(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)

	mu       sync.Mutex
	requests []CompletionRequest
}

func (m *MockClient) Name() string { return m.ProviderName }

// Requests returns every request seen so far.
func (m *MockClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockClient) record(req CompletionRequest) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.record(req)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Content: "mock response"}, nil
}

func (m *MockClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	m.record(req)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}
	return StreamOf("mock ", "stream ", "response"), nil
}

// StreamOf returns a closed channel replaying the given deltas followed by "done".
func StreamOf(deltas ...string) <-chan StreamEvent {
	ch := make(chan StreamEvent, len(deltas)+1)
	for _, d := range deltas {
		ch <- StreamEvent{Type: EventDelta, Content: d}
	}
	ch <- StreamEvent{
		Type:     EventDone,
		Response: &CompletionResponse{Content: strings.Join(deltas, "")},
	}
	close(ch)
	return ch
}
