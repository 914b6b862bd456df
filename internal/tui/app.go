// Package tui is the interactive terminal front-end: one boardroom meeting at
// a time, streamed persona by persona.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/pipeline"
)

const (
	noticeMissingKey = "Please enter your API key in Settings."
	noticeFailed     = "An error occurred during the pipeline."
	noticeAdjourned  = "Meeting adjourned. Ctrl+R starts a new one."
)

// pipelineEventMsg carries one event from the run started under gen.
type pipelineEventMsg struct {
	gen    int
	event  pipeline.Event
	closed bool
}

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	session  *pipeline.Session
	personas *persona.Registry
	log      *logging.Logger

	idea         textinput.Model
	credential   textinput.Model
	showSettings bool
	timeline     viewport.Model
	spinner      spinner.Model
	theme        theme

	gen    int
	events <-chan pipeline.Event
	snap   pipeline.Snapshot

	notice    string
	noticeErr bool

	width  int
	height int
}

// AppOption customises App construction.
type AppOption func(*App)

// WithContext bounds every run started from the UI.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) { a.ctx = ctx }
}

// WithLogger sets the logger. It must not write to the terminal the UI owns.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) { a.log = l }
}

// WithCredential pre-fills the API key field.
func WithCredential(key string) AppOption {
	return func(a *App) { a.credential.SetValue(key) }
}

// NewApp builds the UI around orch.
func NewApp(orch *pipeline.Orchestrator, opts ...AppOption) *App {
	idea := textinput.New()
	idea.Prompt = "❯ "
	idea.Placeholder = "Pitch an idea to the board..."
	idea.CharLimit = 2000
	idea.Focus()

	cred := textinput.New()
	cred.Prompt = "API key: "
	cred.Placeholder = "sk-..."
	cred.EchoMode = textinput.EchoPassword
	cred.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	th := newTheme()
	sp.Style = th.status

	a := &App{
		ctx:        context.Background(),
		session:    pipeline.NewSession(orch),
		personas:   orch.Personas(),
		log:        logging.Nop(),
		idea:       idea,
		credential: cred,
		timeline:   viewport.New(0, 0),
		spinner:    sp,
		theme:      th,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.log = a.log.Sub("tui")
	return a
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.renderTimeline()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.snap.Active != "" {
			a.renderTimeline()
		}
		return a, cmd

	case pipelineEventMsg:
		return a, a.handleEvent(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.session.Reset()
			return a, tea.Quit
		case "ctrl+s":
			if a.showSettings {
				return a, a.closeSettings()
			}
			return a, a.openSettings()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			a.timeline, cmd = a.timeline.Update(msg)
			return a, cmd
		}

		if a.showSettings {
			switch msg.String() {
			case "enter", "esc":
				return a, a.closeSettings()
			}
			var cmd tea.Cmd
			a.credential, cmd = a.credential.Update(msg)
			return a, cmd
		}

		switch msg.String() {
		case "enter":
			return a, a.start()
		case "ctrl+r", "esc":
			a.reset()
			return a, nil
		}
		var cmd tea.Cmd
		a.idea, cmd = a.idea.Update(msg)
		return a, cmd
	}
	return a, nil
}

// start begins a meeting from the idea field. An empty idea does nothing;
// a missing key opens the settings panel instead.
func (a *App) start() tea.Cmd {
	if a.snap.Status == pipeline.StatusRunning {
		return nil
	}
	events, err := a.session.Start(a.ctx, a.idea.Value(), a.credential.Value())
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		return nil
	case errors.Is(err, pipeline.ErrMissingCredential):
		a.setNotice(noticeMissingKey, true)
		return a.openSettings()
	case err != nil:
		a.log.Error().Err(err).Msg("start failed")
		a.setNotice(noticeFailed, true)
		return nil
	}

	a.gen++
	a.events = events
	a.snap = a.session.Snapshot()
	a.setNotice("", false)
	a.renderTimeline()
	return waitForEvent(a.gen, events)
}

func waitForEvent(gen int, events <-chan pipeline.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return pipelineEventMsg{gen: gen, event: ev, closed: !ok}
	}
}

func (a *App) handleEvent(msg pipelineEventMsg) tea.Cmd {
	if msg.gen != a.gen {
		return nil
	}
	if msg.closed {
		a.events = nil
		return nil
	}

	ev := msg.event
	a.snap = ev.Snapshot
	switch ev.Kind {
	case pipeline.EventAgentActive:
		a.log.Debug().Str("agent", ev.AgentID).Msg("agent speaking")
	case pipeline.EventRunCompleted:
		a.log.Info().Str("run", ev.Snapshot.RunID).Msg("run completed")
		a.setNotice(noticeAdjourned, false)
	case pipeline.EventRunFailed:
		a.log.Error().Err(ev.Err).Str("run", ev.Snapshot.RunID).Msg("run failed")
		a.setNotice(noticeFailed, true)
	}
	a.renderTimeline()

	if ev.Terminal() {
		a.events = nil
		return nil
	}
	return waitForEvent(a.gen, a.events)
}

// reset cancels any meeting in progress and clears the board and the idea.
func (a *App) reset() {
	a.session.Reset()
	a.gen++
	a.events = nil
	a.snap = pipeline.Snapshot{}
	a.idea.Reset()
	a.setNotice("", false)
	a.renderTimeline()
}

func (a *App) openSettings() tea.Cmd {
	a.showSettings = true
	a.idea.Blur()
	return a.credential.Focus()
}

func (a *App) closeSettings() tea.Cmd {
	a.showSettings = false
	a.credential.Blur()
	if a.notice == noticeMissingKey && strings.TrimSpace(a.credential.Value()) != "" {
		a.setNotice("", false)
	}
	return a.idea.Focus()
}

func (a *App) setNotice(text string, isErr bool) {
	a.notice = text
	a.noticeErr = isErr
}

// Snapshot returns the run state the UI is currently showing.
func (a *App) Snapshot() pipeline.Snapshot { return a.snap }
