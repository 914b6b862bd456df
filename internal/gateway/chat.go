package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/relay"
)

const maxChatBody = 1 << 20

// handleChat is the relay transport: one persona prompt in, the completion
// streamed back as raw UTF-8 text.
//
// Headers are held until the first fragment, so an upstream failure before any
// text is still reported as a 500 with a JSON body. A failure after that
// aborts the connection and the client sees a truncated body.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		writeJSON(w, http.StatusServiceUnavailable, relay.ErrorBody{Error: "relay not configured"})
		return
	}

	var req relay.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, relay.ErrorBody{Error: "invalid request body"})
		return
	}
	if req.APIKey == "" {
		writeJSON(w, http.StatusUnauthorized, relay.ErrorBody{Error: relay.MissingKeyMessage})
		return
	}

	log := s.log.With("requestId", w.Header().Get("X-Request-ID"))

	fragments, err := s.relay.Stream(r.Context(), relay.Request{
		Persona:    persona.Definition{Instruction: req.SystemPrompt},
		Prompt:     req.UserContent,
		Credential: req.APIKey,
		Model:      req.Model,
	})
	if err != nil {
		s.chatError(w, err)
		return
	}

	first, ok := <-fragments
	if ok && first.Err != nil {
		s.chatError(w, first.Err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	write := func(text string) bool {
		if _, err := io.WriteString(w, text); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !write(first.Text) {
		return
	}
	for f := range fragments {
		if f.Err != nil {
			log.Warn().Err(f.Err).Msg("relay stream failed mid-response")
			panic(http.ErrAbortHandler)
		}
		if !write(f.Text) {
			log.Debug().Msg("client went away")
			return
		}
	}
}

func (s *Server) chatError(w http.ResponseWriter, err error) {
	if errors.Is(err, relay.ErrUnauthorized) {
		writeJSON(w, http.StatusUnauthorized, relay.ErrorBody{Error: relay.MissingKeyMessage})
		return
	}
	msg := err.Error()
	var f *relay.Failure
	if errors.As(err, &f) {
		msg = f.Message
	}
	s.log.Warn().Err(err).Msg("relay request failed")
	writeJSON(w, http.StatusInternalServerError, relay.ErrorBody{Error: msg})
}
