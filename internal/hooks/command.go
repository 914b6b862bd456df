package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/soyeahso/boardroom/internal/config"
)

const defaultCommandTimeout = 10 * time.Second

// RegisterCommands wires the shell commands from cfg to their events.
// Each command receives the payload as JSON on stdin and the event name in
// BOARDROOM_HOOK_EVENT.
func (m *Manager) RegisterCommands(cfg config.HooksConfig) int {
	n := 0
	for event, entries := range map[string][]config.HookEntry{
		EventRunStart:     cfg.RunStart,
		EventRunComplete:  cfg.RunComplete,
		EventRunFailed:    cfg.RunFailed,
		EventGatewayStart: cfg.GatewayStart,
		EventGatewayStop:  cfg.GatewayStop,
	} {
		for i, e := range entries {
			if strings.TrimSpace(e.Command) == "" {
				continue
			}
			m.On(event, fmt.Sprintf("command:%s[%d]", event, i), CommandHandler(e))
			n++
		}
	}
	return n
}

// CommandHandler returns a Handler that runs entry.Command through the shell.
func CommandHandler(entry config.HookEntry) Handler {
	timeout := defaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		input, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := shellCommand(ctx, entry.Command)
		cmd.Stdin = bytes.NewReader(input)
		cmd.Env = append(os.Environ(), "BOARDROOM_HOOK_EVENT="+p.Event)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook command %q: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("hook command %q: %w", entry.Command, err)
		}
		return nil
	}
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}
