// Package relay streams one persona's answer to one prompt.
//
// A Relay call opens a fresh upstream request and yields a finite, ordered
// sequence of non-empty text fragments. A failure is delivered as the final
// Fragment with Err set; success simply closes the channel.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/boardroom/internal/persona"
)

// DefaultModel is used when a request carries no model hint.
const DefaultModel = "gpt-4o"

var (
	// ErrUnauthorized means no credential was supplied. It is returned before
	// any upstream call is made.
	ErrUnauthorized = errors.New("relay: API key is required")

	// ErrRelayFailure matches every *Failure with errors.Is.
	ErrRelayFailure = errors.New("relay failure")
)

// Failure is any upstream problem: transport, upstream status, malformed
// stream, cancellation or per-agent timeout.
type Failure struct {
	Message string
	Timeout bool
	Cause   error
}

func (f *Failure) Error() string {
	return "relay failure: " + f.Message
}

func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{ErrRelayFailure}
	}
	return []error{ErrRelayFailure, f.Cause}
}

func failure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Message: err.Error(), Cause: err}
}

func timeoutFailure(d time.Duration) *Failure {
	return &Failure{
		Message: fmt.Sprintf("no completion within %s", d),
		Timeout: true,
		Cause:   context.DeadlineExceeded,
	}
}

// Request is one persona prompt.
type Request struct {
	Persona    persona.Definition
	Prompt     string
	Credential string
	Model      string // optional; DefaultModel when empty
}

// Fragment is a piece of streamed text, or the terminal error.
type Fragment struct {
	Text string
	Err  error
}

// Relay streams completions. Implementations must close the returned channel
// and must stop promptly when ctx is done.
type Relay interface {
	Stream(ctx context.Context, req Request) (<-chan Fragment, error)
}

// Func adapts a function to the Relay interface.
type Func func(ctx context.Context, req Request) (<-chan Fragment, error)

func (f Func) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	return f(ctx, req)
}

func send(ctx context.Context, ch chan<- Fragment, f Fragment) bool {
	select {
	case ch <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// Collect drains a fragment channel into the full text.
func Collect(ch <-chan Fragment) (string, error) {
	var text string
	for f := range ch {
		if f.Err != nil {
			return text, f.Err
		}
		text += f.Text
	}
	return text, nil
}
