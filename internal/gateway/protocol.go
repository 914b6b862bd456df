package gateway

import (
	"encoding/json"

	"github.com/soyeahso/boardroom/internal/pipeline"
)

// ProtocolVersion is the websocket protocol spoken by this server.
const ProtocolVersion = 1

// Frame types for the WebSocket protocol.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Event names pushed to clients.
const (
	EventConnectChallenge = "connect.challenge"
	EventPipeline         = "pipeline.event"
)

// Frame is the envelope for every websocket message. Type discriminates
// between request, response and event frames.
type Frame struct {
	Type string `json:"type"`

	// req
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// res
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	// event
	Event string `json:"event,omitempty"`
	Seq   int64  `json:"seq,omitempty"`
}

// ErrorShape is the error body of a failed response.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	CodeProtocol       = "protocol_error"
	CodeInvalidParams  = "invalid_params"
	CodeUnauthorized   = "unauthorized"
	CodeMethodNotFound = "method_not_found"
	CodeNotFound       = "not_found"
	CodeForbidden      = "forbidden"
	CodeUnavailable    = "unavailable"
)

// ConnectParams are sent by the client in the initial "connect" request.
type ConnectParams struct {
	MinProtocol int          `json:"minProtocol"`
	MaxProtocol int          `json:"maxProtocol"`
	Client      ClientInfo   `json:"client"`
	Auth        *ConnectAuth `json:"auth,omitempty"`
}

// ClientInfo identifies the connecting client.
type ClientInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version"`
	Platform    string `json:"platform,omitempty"`
}

// ConnectAuth carries credentials in the connect request.
type ConnectAuth struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// HelloOK is the connect response payload.
type HelloOK struct {
	Protocol int          `json:"protocol"`
	Server   ServerInfo   `json:"server"`
	Features Features     `json:"features"`
	Policy   ServerPolicy `json:"policy"`
}

type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	ConnID  string `json:"connId"`
}

type Features struct {
	Methods  []string `json:"methods"`
	Events   []string `json:"events"`
	Personas []string `json:"personas"`
}

type ServerPolicy struct {
	MaxPayload     int `json:"maxPayload"`
	TickIntervalMs int `json:"tickIntervalMs"`
}

// PipelineStartParams start a run for the calling connection.
type PipelineStartParams struct {
	Idea   string `json:"idea"`
	APIKey string `json:"apiKey"`
	Model  string `json:"model,omitempty"`
}

// PipelineStarted is the pipeline.start response payload.
type PipelineStarted struct {
	RunID    string   `json:"runId"`
	Personas []string `json:"personas"`
}

// PipelineEvent is the payload of a pipeline.event frame.
type PipelineEvent struct {
	Kind     pipeline.EventKind `json:"kind"`
	RunID    string             `json:"runId"`
	AgentID  string             `json:"agentId,omitempty"`
	Fragment string             `json:"fragment,omitempty"`
	Error    string             `json:"error,omitempty"`
	Snapshot pipeline.Snapshot  `json:"snapshot"`
}

func newPipelineEvent(ev pipeline.Event) PipelineEvent {
	p := PipelineEvent{
		Kind:     ev.Kind,
		RunID:    ev.Snapshot.RunID,
		AgentID:  ev.AgentID,
		Fragment: ev.Fragment,
		Snapshot: ev.Snapshot,
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	return p
}

// NewRequest creates a request frame.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

// NewResponse creates a success response frame.
func NewResponse(id string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	ok := true
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Payload: raw}, nil
}

// NewErrorResponse creates an error response frame.
func NewErrorResponse(id string, errShape ErrorShape) Frame {
	ok := false
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Error: &errShape}
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw, Seq: seq}, nil
}
