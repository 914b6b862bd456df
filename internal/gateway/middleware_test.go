package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func serve(h http.Handler, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLoggingMiddleware(t *testing.T) {
	rr := serve(loggingMiddleware(okHandler, logging.New(nil, "silent")), "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	rr := serve(requestIDMiddleware(okHandler), "GET", "/health", "")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "meeting-42")
	rr = httptest.NewRecorder()
	requestIDMiddleware(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, "meeting-42", rr.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"deny when unconfigured", nil, "http://localhost:3000", ""},
		{"wildcard echoes origin", []string{"*"}, "http://localhost:3000", "http://localhost:3000"},
		{"listed origin", []string{"http://allowed.com"}, "http://allowed.com", "http://allowed.com"},
		{"unlisted origin", []string{"http://allowed.com"}, "http://evil.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(corsMiddleware(okHandler, tt.allowed), "POST", "/api/chat", tt.origin)
			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	rr := serve(corsMiddleware(okHandler, nil), "OPTIONS", "/api/chat", "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestCORSMiddleware_VaryOnOrigin(t *testing.T) {
	rr := serve(corsMiddleware(okHandler, []string{"http://allowed.com"}), "POST", "/api/chat", "http://allowed.com")

	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestWithMiddleware(t *testing.T) {
	log := logging.New(nil, "silent")

	rr := serve(withMiddleware(okHandler, log, nil), "GET", "/health", "http://test.com")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	rr = serve(withMiddleware(okHandler, log, []string{"http://test.com"}), "GET", "/health", "http://test.com")
	assert.Equal(t, "http://test.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusWriterPassesFlushThrough(t *testing.T) {
	log := logging.New(nil, "silent")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("chunk"))
		assert.NoError(t, http.NewResponseController(w).Flush())
	})

	rr := serve(loggingMiddleware(inner, log), "POST", "/api/chat", "")
	assert.True(t, rr.Flushed)
	assert.Equal(t, "chunk", rr.Body.String())
}
