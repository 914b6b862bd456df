package pipeline

import "fmt"

// EventKind tells consumers what changed.
type EventKind int

const (
	EventRunStarted EventKind = iota + 1
	EventAgentActive
	EventFragment
	EventAgentDone
	EventRunCompleted
	EventRunFailed
)

func (k EventKind) String() string {
	switch k {
	case EventRunStarted:
		return "run.started"
	case EventAgentActive:
		return "agent.active"
	case EventFragment:
		return "agent.fragment"
	case EventAgentDone:
		return "agent.done"
	case EventRunCompleted:
		return "run.completed"
	case EventRunFailed:
		return "run.failed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes an event name written by MarshalText.
func (k *EventKind) UnmarshalText(text []byte) error {
	for v := EventRunStarted; v <= EventRunFailed; v++ {
		if v.String() == string(text) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

// Event is one step of a run, with the run state as it stood right after it.
type Event struct {
	Kind     EventKind `json:"kind"`
	AgentID  string    `json:"agentId,omitempty"`
	Fragment string    `json:"fragment,omitempty"`
	Err      error     `json:"-"`
	Snapshot Snapshot  `json:"snapshot"`
}

// Terminal reports whether this is the last event of its run.
func (e Event) Terminal() bool {
	return e.Kind == EventRunCompleted || e.Kind == EventRunFailed
}
