package relay

import (
	"context"
	"errors"

	"github.com/soyeahso/boardroom/internal/llm"
	"github.com/soyeahso/boardroom/internal/logging"
)

// Direct relays in-process to a completion provider picked by model name.
type Direct struct {
	providers    *llm.Registry
	defaultModel string
	log          *logging.Logger
}

// NewDirect creates a relay backed by the provider registry.
func NewDirect(providers *llm.Registry, defaultModel string, log *logging.Logger) *Direct {
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Direct{
		providers:    providers,
		defaultModel: defaultModel,
		log:          log.Sub("relay"),
	}
}

// Stream sends the persona instruction and prompt upstream and forwards text deltas.
func (d *Direct) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	if req.Credential == "" {
		return nil, ErrUnauthorized
	}
	model := req.Model
	if model == "" {
		model = d.defaultModel
	}

	client, err := d.providers.Resolve(model)
	if err != nil {
		return nil, failure(err)
	}

	d.log.Debug().
		Str("persona", req.Persona.ID).
		Str("provider", client.Name()).
		Str("model", model).
		Int("promptLen", len(req.Prompt)).
		Msg("opening stream")

	events, err := client.Stream(ctx, llm.CompletionRequest{
		Model:    model,
		System:   req.Persona.Instruction,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: req.Prompt}},
		APIKey:   req.Credential,
	})
	if err != nil {
		return nil, failure(err)
	}

	out := make(chan Fragment)
	go d.forward(ctx, events, out)
	return out, nil
}

func (d *Direct) forward(ctx context.Context, events <-chan llm.StreamEvent, out chan<- Fragment) {
	defer close(out)

	for ev := range events {
		switch ev.Type {
		case llm.EventDelta:
			if ev.Content == "" {
				continue
			}
			if !send(ctx, out, Fragment{Text: ev.Content}) {
				return
			}
		case llm.EventError:
			cause := ev.Err
			if cause == nil {
				cause = errors.New(ev.Error)
			}
			d.log.Warn().Err(cause).Msg("upstream stream failed")
			send(ctx, out, Fragment{Err: failure(cause)})
			return
		case llm.EventDone:
			return
		}
	}

	// Provider closed without a terminal event: only happens when ctx ended.
	if err := ctx.Err(); err != nil {
		send(ctx, out, Fragment{Err: failure(err)})
		return
	}
	send(ctx, out, Fragment{Err: &Failure{Message: "stream ended without completion"}})
}
