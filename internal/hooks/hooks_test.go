package hooks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManagerEmitInRegistrationOrder(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventAgentDone, "first", func(_ context.Context, p Payload) error {
		order = append(order, "first:"+p.Data["agent"].(string))
		return nil
	})
	m.On(EventAgentDone, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventAgentDone, map[string]any{"agent": "thiel"})
	assert.Equal(t, []string{"first:thiel", "second"}, order)
}

func TestManagerHandlerErrorDoesNotStopOthers(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventRunFailed, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventRunFailed, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	m.Emit(context.Background(), EventRunFailed, nil)
	assert.True(t, secondCalled)
}

func TestManagerEmitNoHandlers(t *testing.T) {
	m := testManager()
	assert.NotPanics(t, func() { m.Emit(context.Background(), EventGatewayStop, nil) })
}

func TestManagerOff(t *testing.T) {
	m := testManager()

	var removed, kept int
	m.On(EventRunStart, "remove-me", func(_ context.Context, _ Payload) error {
		removed++
		return nil
	})
	m.On(EventRunStart, "keep-me", func(_ context.Context, _ Payload) error {
		kept++
		return nil
	})

	m.Off(EventRunStart, "remove-me")
	m.Emit(context.Background(), EventRunStart, nil)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, kept)
}

func TestManagerEmitAsyncAndWait(t *testing.T) {
	m := testManager()

	var count atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		m.On(EventRunComplete, name, func(_ context.Context, _ Payload) error {
			count.Add(1)
			return nil
		})
	}

	m.EmitAsync(context.Background(), EventRunComplete, nil)
	m.Wait()
	assert.Equal(t, int32(3), count.Load())
}

func TestManagerCountAndEvents(t *testing.T) {
	m := testManager()
	assert.Equal(t, 0, m.Count(EventGatewayStart))

	m.On(EventGatewayStart, "h1", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventAgentStart, "h2", func(_ context.Context, _ Payload) error { return nil })

	assert.Equal(t, 1, m.Count(EventGatewayStart))
	assert.Equal(t, []string{EventAgentStart, EventGatewayStart}, m.Events())
}

func TestAllEvents(t *testing.T) {
	assert.Len(t, AllEvents, 7)
	assert.Contains(t, AllEvents, EventRunComplete)
}

func TestRegisterCommands(t *testing.T) {
	m := testManager()
	n := m.RegisterCommands(config.HooksConfig{
		RunStart:    []config.HookEntry{{Command: "true"}, {Command: "  "}},
		RunComplete: []config.HookEntry{{Command: "true"}},
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, m.Count(EventRunStart))
	assert.Equal(t, 1, m.Count(EventRunComplete))
	assert.Equal(t, 0, m.Count(EventRunFailed))
}

func TestCommandHandlerReceivesPayload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	out := filepath.Join(t.TempDir(), "payload.json")
	h := CommandHandler(config.HookEntry{Command: `cat > "` + out + `"; echo "$BOARDROOM_HOOK_EVENT" >> "` + out + `"`})

	err := h(context.Background(), Payload{Event: EventRunComplete, Data: map[string]any{"runId": "r-1"}})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runId":"r-1"`)
	assert.Contains(t, string(data), "run_complete\n")
}

func TestCommandHandlerFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	h := CommandHandler(config.HookEntry{Command: "echo nope >&2; exit 3"})
	err := h(context.Background(), Payload{Event: EventRunFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestCommandHandlerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	h := CommandHandler(config.HookEntry{Command: "sleep 5", Timeout: 50})
	assert.Error(t, h(context.Background(), Payload{Event: EventRunStart}))
}
