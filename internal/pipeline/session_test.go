package pipeline

import (
	"context"
	"testing"

	"github.com/soyeahso/boardroom/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hangOnSeed blocks every stream of the run seeded with seed; others echo.
func hangOnSeed(seed string) func(context.Context, relay.Request, chan<- relay.Fragment) {
	return func(ctx context.Context, req relay.Request, out chan<- relay.Fragment) {
		if req.Persona.ID == "son" && req.Prompt == BuildPrompt(0, seed, "") {
			<-ctx.Done()
			return
		}
		echo(ctx, req, out)
	}
}

func TestSessionStartAndSnapshot(t *testing.T) {
	s := NewSession(newTestOrchestrator(&scripted{reply: echo}))
	assert.Equal(t, StatusIdle, s.Snapshot().Status)

	ch, err := s.Start(context.Background(), freshAir, "valid-key")
	require.NoError(t, err)
	final, err := Collect(ch)
	require.NoError(t, err)

	got := s.Snapshot()
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, final.RunID, got.RunID)
	assert.Len(t, got.Entries, 5)
	assert.False(t, s.Running())
}

func TestSessionStartReplacesCurrentRun(t *testing.T) {
	s := NewSession(newTestOrchestrator(&scripted{reply: hangOnSeed("first")}))

	first, err := s.Start(context.Background(), "first", "k")
	require.NoError(t, err)
	assert.True(t, s.Running())

	second, err := s.Start(context.Background(), "second", "k")
	require.NoError(t, err)

	_, err = Collect(first)
	assert.Error(t, err)

	snap, err := Collect(second)
	require.NoError(t, err)
	assert.Equal(t, "second", snap.Seed)

	got := s.Snapshot()
	assert.Equal(t, "second", got.Seed)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestSessionPreconditionErrorKeepsCurrentRun(t *testing.T) {
	s := NewSession(newTestOrchestrator(&scripted{reply: echo}))

	ch, err := s.Start(context.Background(), freshAir, "valid-key")
	require.NoError(t, err)
	_, err = Collect(ch)
	require.NoError(t, err)

	_, err = s.Start(context.Background(), freshAir, "")
	require.ErrorIs(t, err, ErrMissingCredential)
	_, err = s.Start(context.Background(), "  ", "valid-key")
	require.ErrorIs(t, err, ErrEmptyInput)

	assert.Equal(t, StatusCompleted, s.Snapshot().Status)
}

func TestSessionReset(t *testing.T) {
	s := NewSession(newTestOrchestrator(&scripted{reply: hangOnSeed(freshAir)}))

	ch, err := s.Start(context.Background(), freshAir, "valid-key")
	require.NoError(t, err)

	s.Reset()
	_, err = Collect(ch)
	assert.Error(t, err)

	got := s.Snapshot()
	assert.Equal(t, StatusIdle, got.Status)
	assert.Empty(t, got.Entries)
	assert.Empty(t, got.Context)
	assert.False(t, s.Running())
}

func TestSessionCurrent(t *testing.T) {
	s := NewSession(newTestOrchestrator(&scripted{reply: hangOnSeed("first")}))
	assert.False(t, s.Current(""))

	first, err := s.Start(context.Background(), "first", "k")
	require.NoError(t, err)
	started := <-first
	firstID := started.Snapshot.RunID
	assert.True(t, s.Current(firstID))

	second, err := s.Start(context.Background(), "second", "k")
	require.NoError(t, err)
	assert.False(t, s.Current(firstID), "replaced run")

	snap, err := Collect(second)
	require.NoError(t, err)
	assert.True(t, s.Current(snap.RunID))
	assert.False(t, s.Current(firstID))

	s.Reset()
	assert.False(t, s.Current(snap.RunID), "reset run")
	Collect(first)
}
