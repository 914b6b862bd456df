package pipeline

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a run.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{StatusIdle, StatusRunning, StatusCompleted, StatusFailed} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown run status %q", text)
}

// Terminal reports whether no further events follow.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// LogEntry is one persona's streamed answer.
type LogEntry struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
	Content   string `json:"content"`
	Done      bool   `json:"done"`
}

// Snapshot is an immutable copy of a run. Consumers may keep it as long as
// they like; later fragments never change it.
type Snapshot struct {
	RunID      string     `json:"runId,omitempty"`
	Seed       string     `json:"seed"`
	Context    string     `json:"context"`
	Active     string     `json:"active,omitempty"` // id of the speaking persona
	Entries    []LogEntry `json:"entries"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt,omitzero"`
	FinishedAt time.Time  `json:"finishedAt,omitzero"`
}

// Entry returns the log entry for agentID, if any.
func (s Snapshot) Entry(agentID string) (LogEntry, bool) {
	for _, e := range s.Entries {
		if e.AgentID == agentID {
			return e, true
		}
	}
	return LogEntry{}, false
}

// Completed returns the entries that finished streaming.
func (s Snapshot) Completed() []LogEntry {
	var out []LogEntry
	for _, e := range s.Entries {
		if e.Done {
			out = append(out, e)
		}
	}
	return out
}
