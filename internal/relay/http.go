package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/soyeahso/boardroom/internal/version"
)

const readChunkSize = 4096

// HTTPClient relays through a gateway's POST /api/chat endpoint.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	log      *logging.Logger
}

// NewHTTPClient creates a relay that talks to the gateway at baseURL.
// A nil client uses a fresh http.Client without a timeout; bound streams with
// WithTimeout instead.
func NewHTTPClient(baseURL string, client *http.Client, log *logging.Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/chat",
		client:   client,
		log:      log.Sub("relay.http"),
	}
}

// Stream posts the request and decodes the streamed body incrementally.
func (c *HTTPClient) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	if req.Credential == "" {
		return nil, ErrUnauthorized
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	payload, err := json.Marshal(ChatRequest{
		SystemPrompt: req.Persona.Instruction,
		UserContent:  req.Prompt,
		APIKey:       req.Credential,
		Model:        model,
	})
	if err != nil {
		return nil, failure(fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, failure(fmt.Errorf("request creation failed: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, failure(fmt.Errorf("request failed: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	out := make(chan Fragment)
	go c.read(ctx, resp.Body, out)
	return out, nil
}

func (c *HTTPClient) read(ctx context.Context, body io.ReadCloser, out chan<- Fragment) {
	defer close(out)
	defer body.Close()

	var dec utf8Decoder
	buf := make([]byte, readChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if text := dec.Decode(buf[:n]); text != "" {
				if !send(ctx, out, Fragment{Text: text}) {
					return
				}
			}
		}
		if errors.Is(err, io.EOF) {
			if rest := dec.Flush(); rest != "" {
				send(ctx, out, Fragment{Text: rest})
			}
			return
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			c.log.Debug().Err(err).Msg("stream read failed")
			send(ctx, out, Fragment{Err: failure(fmt.Errorf("stream interrupted: %w", err))})
			return
		}
	}
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body ErrorBody
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = resp.Status
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	return &Failure{Message: fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, msg)}
}
