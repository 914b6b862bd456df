package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/pipeline"
	"github.com/soyeahso/boardroom/internal/relay"
)

// readableConfigPrefixes lists the config paths config.get may expose.
// Secrets under gateway.auth and gateway.tls stay hidden.
var readableConfigPrefixes = []string{
	"relay.mode",
	"relay.model",
	"pipeline",
	"logging.level",
	"gateway.port",
	"gateway.bind",
	"gateway.allowedOrigins",
}

func isReadableConfigPath(key string) bool {
	for _, prefix := range readableConfigPrefixes {
		if key == prefix || strings.HasPrefix(key, prefix+".") {
			return true
		}
	}
	return false
}

func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", handleNotFound)
}

func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("config.get", s.rpcConfigGet)
	s.Handle("personas.list", s.rpcPersonasList)
	s.Handle("pipeline.start", s.rpcPipelineStart)
	s.Handle("pipeline.reset", s.rpcPipelineReset)
	s.Handle("pipeline.snapshot", s.rpcPipelineSnapshot)
}

func (s *Server) personas() *persona.Registry {
	if s.orch != nil {
		return s.orch.Personas()
	}
	return persona.Default()
}

func (s *Server) personaIDs() []string { return s.personas().IDs() }

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Clients:  s.clients.Count(),
		Running:  s.clients.Running(),
		UptimeMs: s.uptime().Milliseconds(),
	})
}

type configGetParams struct {
	Key string `json:"key"`
}

func (s *Server) rpcConfigGet(rc *RequestContext) {
	var p configGetParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if p.Key == "" {
		rc.RespondError(CodeInvalidParams, "key is required")
		return
	}
	if !isReadableConfigPath(p.Key) {
		rc.RespondError(CodeForbidden, "access denied for config path: "+p.Key)
		return
	}

	path, err := config.ParseConfigPath(p.Key)
	if err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	val, ok := config.GetValueAtPath(s.configRaw, path)
	if !ok {
		rc.RespondError(CodeNotFound, "key not found: "+p.Key)
		return
	}
	rc.Respond(map[string]any{"key": p.Key, "value": val})
}

// personaInfo is a persona as shown to clients.
type personaInfo struct {
	persona.Definition
	Label  string `json:"label"`
	Accent string `json:"accent"`
	Icon   string `json:"icon"`
}

func (s *Server) rpcPersonasList(rc *RequestContext) {
	defs := s.personas().All()
	out := make([]personaInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, personaInfo{
			Definition: d,
			Label:      d.Archetype.Label(),
			Accent:     d.Archetype.Accent(),
			Icon:       d.Archetype.Icon(),
		})
	}
	rc.Respond(map[string]any{"personas": out})
}

// rpcPipelineStart replaces the client's current run with a new one. The
// response carries the run id; progress follows as pipeline.event frames.
func (s *Server) rpcPipelineStart(rc *RequestContext) {
	session := rc.Client.Session
	if s.orch == nil || session == nil {
		rc.RespondError(CodeUnavailable, "pipeline not configured")
		return
	}

	var p PipelineStartParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}

	events, ok := s.startRun(rc, p)
	if !ok {
		return
	}
	go func() {
		for ev := range events {
			s.forward(rc.Client, ev)
		}
	}()
}

// startRun starts the run, answers the request and sends the first event. It
// holds the client's forwarding lock throughout, so nothing from the replaced
// run can reach the client after this response.
func (s *Server) startRun(rc *RequestContext, p PipelineStartParams) (<-chan pipeline.Event, bool) {
	c := rc.Client
	c.forwardMu.Lock()
	defer c.forwardMu.Unlock()

	events, err := c.Session.StartWith(s.runContext(), s.orch.ForModel(p.Model), p.Idea, p.APIKey)
	switch {
	case errors.Is(err, pipeline.ErrMissingCredential):
		rc.RespondError(CodeUnauthorized, relay.MissingKeyMessage)
		return nil, false
	case errors.Is(err, pipeline.ErrEmptyInput):
		rc.RespondError(CodeInvalidParams, "idea is required")
		return nil, false
	case err != nil:
		rc.RespondError(CodeUnavailable, err.Error())
		return nil, false
	}

	first, ok := <-events
	if !ok {
		rc.RespondError(CodeUnavailable, "run was replaced before it started")
		return nil, false
	}
	rc.Respond(PipelineStarted{RunID: first.Snapshot.RunID, Personas: s.personaIDs()})

	s.log.Info().Str("connId", c.ConnID).Str("run", first.Snapshot.RunID).Msg("pipeline started")
	s.sendEvent(c, first)
	return events, true
}

// forward pushes one run event to the client unless the run has since been
// replaced or reset.
func (s *Server) forward(c *Client, ev pipeline.Event) {
	c.forwardMu.Lock()
	defer c.forwardMu.Unlock()
	if !c.Session.Current(ev.Snapshot.RunID) {
		return
	}
	s.sendEvent(c, ev)
}

// sendEvent writes a pipeline event frame. Send errors are dropped; the run is
// cancelled when the client disconnects.
func (s *Server) sendEvent(c *Client, ev pipeline.Event) {
	if err := c.SendEvent(EventPipeline, newPipelineEvent(ev), s.eventSeq.Add(1)); err != nil {
		s.log.Debug().Err(err).Str("connId", c.ConnID).Msg("pipeline event not delivered")
	}
}

func (s *Server) rpcPipelineReset(rc *RequestContext) {
	if rc.Client.Session == nil {
		rc.RespondError(CodeUnavailable, "pipeline not configured")
		return
	}
	rc.Client.Session.Reset()
	rc.Respond(map[string]any{"status": pipeline.StatusIdle})
}

func (s *Server) rpcPipelineSnapshot(rc *RequestContext) {
	if rc.Client.Session == nil {
		rc.RespondError(CodeUnavailable, "pipeline not configured")
		return
	}
	rc.Respond(rc.Client.Session.Snapshot())
}
