// Package pipeline runs the boardroom: every persona in registry order, each
// one reading the proposal its predecessors built.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/boardroom/internal/hooks"
	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/relay"
)

const (
	DefaultPause        = time.Second
	DefaultAgentTimeout = 5 * time.Minute
)

var (
	// ErrMissingCredential is returned when Run is called without an API key.
	ErrMissingCredential = errors.New("missing API key")
	// ErrEmptyInput is returned when the seed idea is blank. Front-ends treat it as a no-op.
	ErrEmptyInput = errors.New("empty seed idea")
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPersonas replaces the default five-persona registry.
func WithPersonas(r *persona.Registry) Option {
	return func(o *Orchestrator) { o.personas = r }
}

// WithPause sets the pause between personas. Zero disables it.
func WithPause(d time.Duration) Option {
	return func(o *Orchestrator) { o.pause = d }
}

// WithAgentTimeout bounds each persona's stream. Zero disables the bound.
func WithAgentTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.agentTimeout = d }
}

// WithModel sets the model hint passed to the relay.
func WithModel(model string) Option {
	return func(o *Orchestrator) { o.model = model }
}

// WithHooks emits lifecycle events to m.
func WithHooks(m *hooks.Manager) Option {
	return func(o *Orchestrator) { o.hooks = m }
}

// Orchestrator sequences personas through a relay. It is safe for concurrent
// use; every Run owns its own state.
type Orchestrator struct {
	relay        relay.Relay
	personas     *persona.Registry
	pause        time.Duration
	agentTimeout time.Duration
	model        string
	hooks        *hooks.Manager
	log          *logging.Logger
}

// New creates an orchestrator that streams through r.
func New(r relay.Relay, log *logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		relay:        r,
		personas:     persona.Default(),
		pause:        DefaultPause,
		agentTimeout: DefaultAgentTimeout,
		log:          log.Sub("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ForModel returns a copy of o that passes model to the relay. An empty model
// returns o itself.
func (o *Orchestrator) ForModel(model string) *Orchestrator {
	if model == "" || model == o.model {
		return o
	}
	c := *o
	c.model = model
	return &c
}

// Model returns the model hint, empty meaning the relay default.
func (o *Orchestrator) Model() string { return o.model }

// Personas returns the registry this orchestrator iterates.
func (o *Orchestrator) Personas() *persona.Registry { return o.personas }

// Run validates its input and starts a run in the background. The returned
// channel yields every event in order and closes after exactly one terminal
// event (EventRunCompleted or EventRunFailed). Callers must drain it or
// cancel ctx.
//
// Cancelling ctx aborts the in-flight stream and ends the run as failed. The
// run then stops waiting for the reader: the terminal event is left buffered,
// replacing at most one event the reader had not taken yet.
func (o *Orchestrator) Run(ctx context.Context, seed, credential string) (<-chan Event, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(seed) == "" {
		return nil, ErrEmptyInput
	}

	r := &run{
		id:        uuid.NewString(),
		seed:      seed,
		context:   InitialContext(seed),
		status:    StatusRunning,
		startedAt: time.Now(),
		out:       make(chan Event, 1),
	}
	go o.execute(ctx, r, credential)
	return r.out, nil
}

// run is the mutable state of one pipeline run. Only the execute goroutine touches it.
type run struct {
	id         string
	seed       string
	context    string
	active     string
	entries    []LogEntry
	open       strings.Builder // content of the last entry while it streams
	status     Status
	err        error
	startedAt  time.Time
	finishedAt time.Time
	out        chan Event // one slot, so the terminal event never blocks
}

func (r *run) snapshot() Snapshot {
	entries := make([]LogEntry, len(r.entries))
	copy(entries, r.entries)
	if n := len(entries); n > 0 && !entries[n-1].Done {
		entries[n-1].Content = r.open.String()
	}
	s := Snapshot{
		RunID:      r.id,
		Seed:       r.seed,
		Context:    r.context,
		Active:     r.active,
		Entries:    entries,
		Status:     r.status,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
	}
	if r.err != nil {
		s.Error = r.err.Error()
	}
	return s
}

func (r *run) event(kind EventKind, agentID, fragment string) Event {
	return Event{Kind: kind, AgentID: agentID, Fragment: fragment, Err: r.err, Snapshot: r.snapshot()}
}

// emit sends a progress event. It reports false once ctx is done.
func (r *run) emit(ctx context.Context, kind EventKind, agentID, fragment string) bool {
	select {
	case r.out <- r.event(kind, agentID, fragment):
		return true
	case <-ctx.Done():
		return false
	}
}

// finish sends the terminal event without ever blocking on a cancelled run.
func (r *run) finish(ctx context.Context, kind EventKind, agentID string) {
	ev := r.event(kind, agentID, "")
	select {
	case r.out <- ev:
		return
	case <-ctx.Done():
	}
	// execute is the only sender, so freeing the slot guarantees the send.
	select {
	case <-r.out:
	default:
	}
	r.out <- ev
}

func (o *Orchestrator) execute(ctx context.Context, r *run, credential string) {
	defer close(r.out)

	log := o.log.With("run", r.id)
	stream := relay.WithTimeout(o.relay, o.agentTimeout)

	log.Info().Int("personas", o.personas.Count()).Msg("run started")
	o.notify(ctx, hooks.EventRunStart, map[string]any{"runId": r.id, "seed": r.seed})
	if !r.emit(ctx, EventRunStarted, "", "") {
		o.fail(ctx, r, o.personas.At(0), ctx.Err())
		return
	}

	last := o.personas.Count() - 1
	for i := 0; i <= last; i++ {
		p := o.personas.At(i)
		if err := o.speak(ctx, r, stream, i, p, credential); err != nil {
			o.fail(ctx, r, p, err)
			return
		}
		// A pause cut short belongs to the persona that was due to speak.
		if i < last && !o.wait(ctx) {
			o.fail(ctx, r, o.personas.At(i+1), ctx.Err())
			return
		}
	}

	r.active = ""
	r.status = StatusCompleted
	r.finishedAt = time.Now()
	log.Info().Dur("elapsed", r.finishedAt.Sub(r.startedAt)).Msg("run completed")
	o.notify(ctx, hooks.EventRunComplete, map[string]any{"runId": r.id, "context": r.context})
	r.finish(ctx, EventRunCompleted, "")
}

// speak streams one persona's answer into a fresh entry and folds it into the context.
func (o *Orchestrator) speak(ctx context.Context, r *run, stream relay.Relay, i int, p persona.Definition, credential string) error {
	r.active = p.ID
	if !r.emit(ctx, EventAgentActive, p.ID, "") {
		return ctx.Err()
	}
	o.notify(ctx, hooks.EventAgentStart, map[string]any{"runId": r.id, "agent": p.ID})

	prompt := BuildPrompt(i, r.seed, r.context)
	r.entries = append(r.entries, LogEntry{AgentID: p.ID, AgentName: p.Name})
	r.open.Reset()

	fragments, err := stream.Stream(ctx, relay.Request{
		Persona:    p,
		Prompt:     prompt,
		Credential: credential,
		Model:      o.model,
	})
	if err != nil {
		return err
	}

	for f := range fragments {
		if f.Err != nil {
			return f.Err
		}
		r.open.WriteString(f.Text)
		if !r.emit(ctx, EventFragment, p.ID, f.Text) {
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	response := r.open.String()
	entry := &r.entries[len(r.entries)-1]
	entry.Content = response
	entry.Done = true
	r.context += ContextBlock(p.Name, response)

	o.log.Debug().Str("run", r.id).Str("agent", p.ID).Int("chars", len(response)).Msg("agent done")
	// The answer is complete even if nobody reads this; the caller notices the
	// cancellation before the next persona starts.
	r.emit(ctx, EventAgentDone, p.ID, "")
	o.notify(ctx, hooks.EventAgentDone, map[string]any{"runId": r.id, "agent": p.ID, "chars": len(response)})
	return nil
}

func (o *Orchestrator) wait(ctx context.Context) bool {
	if o.pause <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(o.pause)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// fail ends the run. Finished entries stay; the failing persona's entry is
// kept only if it already holds text.
func (o *Orchestrator) fail(ctx context.Context, r *run, p persona.Definition, err error) {
	if n := len(r.entries); n > 0 && !r.entries[n-1].Done {
		if r.open.Len() == 0 {
			r.entries = r.entries[:n-1]
		} else {
			r.entries[n-1].Content = r.open.String()
		}
	}
	if !errors.Is(err, relay.ErrUnauthorized) && !errors.Is(err, relay.ErrRelayFailure) {
		err = &relay.Failure{Message: err.Error(), Cause: err}
	}

	r.err = fmt.Errorf("agent %s: %w", p.ID, err)
	r.active = ""
	r.status = StatusFailed
	r.finishedAt = time.Now()

	o.log.Warn().Err(err).Str("run", r.id).Str("agent", p.ID).Msg("run failed")
	o.notify(ctx, hooks.EventRunFailed, map[string]any{"runId": r.id, "agent": p.ID, "error": err.Error()})
	r.finish(ctx, EventRunFailed, p.ID)
}

func (o *Orchestrator) notify(ctx context.Context, event string, data map[string]any) {
	if o.hooks == nil {
		return
	}
	o.hooks.EmitAsync(context.WithoutCancel(ctx), event, data)
}
