package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrAbandoned is reported by Collect when a channel closes without a terminal event,
// which happens when a Session run is reset or replaced.
var ErrAbandoned = errors.New("run abandoned")

// Session holds the current run of one front-end. Starting a new run replaces
// the previous one entirely.
type Session struct {
	orch *Orchestrator

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	latest Snapshot
}

// NewSession creates an idle session.
func NewSession(o *Orchestrator) *Session {
	return &Session{orch: o}
}

// Start cancels any current run and begins a new one. Precondition errors
// from Orchestrator.Run leave the current run untouched.
//
// The returned channel stops early, without a terminal event, once the run is
// replaced or Reset.
func (s *Session) Start(ctx context.Context, seed, credential string) (<-chan Event, error) {
	return s.StartWith(ctx, s.orch, seed, credential)
}

// StartWith is Start with a different orchestrator for this one run, such as
// one bound to another model.
func (s *Session) StartWith(ctx context.Context, o *Orchestrator, seed, credential string) (<-chan Event, error) {
	runCtx, cancel := context.WithCancel(ctx)
	events, err := o.Run(runCtx, seed, credential)
	if err != nil {
		cancel()
		return nil, err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.latest = Snapshot{Seed: seed, Context: InitialContext(seed), Status: StatusRunning}
	s.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		defer cancel()
		for ev := range events {
			s.record(gen, ev.Snapshot)
			select {
			case out <- ev:
			case <-runCtx.Done():
				for range events {
				}
				return
			}
		}
	}()
	return out, nil
}

func (s *Session) record(gen uint64, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.latest = snap
	}
}

// Reset cancels the current run and discards its state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.latest = Snapshot{}
}

// Snapshot returns the latest state of the current run.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Current reports whether runID is the session's current run. Events of a run
// that was replaced or reset are no longer current.
func (s *Session) Current(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return runID != "" && s.latest.RunID == runID
}

// Running reports whether a run is in progress.
func (s *Session) Running() bool {
	return s.Snapshot().Status == StatusRunning
}

// Collect drains events and returns the final snapshot. A failed run returns
// its cause.
func Collect(events <-chan Event) (Snapshot, error) {
	var last Event
	seen := false
	for ev := range events {
		last = ev
		seen = true
	}
	if !seen || !last.Terminal() {
		return last.Snapshot, ErrAbandoned
	}
	if last.Kind == EventRunFailed {
		return last.Snapshot, last.Err
	}
	return last.Snapshot, nil
}
