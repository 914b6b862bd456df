package relay

import (
	"unicode/utf8"
)

// ChatRequest is the JSON body of POST /api/chat.
type ChatRequest struct {
	SystemPrompt string `json:"systemPrompt"`
	UserContent  string `json:"userContent"`
	APIKey       string `json:"apiKey"`
	Model        string `json:"model,omitempty"`
}

// ErrorBody is the JSON body of a non-streaming error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MissingKeyMessage is the error text returned when apiKey is absent.
const MissingKeyMessage = "API Key is required"

// utf8Decoder turns an arbitrary byte stream into valid text chunks, holding
// back a trailing partial rune until the bytes that complete it arrive.
type utf8Decoder struct {
	pending []byte
}

// Decode returns the longest prefix of pending+p that ends on a rune boundary.
func (d *utf8Decoder) Decode(p []byte) string {
	buf := append(d.pending, p...)

	cut := len(buf)
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if !utf8.FullRune(buf[i:]) {
				cut = i
			}
			break
		}
	}

	d.pending = append([]byte(nil), buf[cut:]...)
	return string(buf[:cut])
}

// Flush returns whatever is still held back. Incomplete sequences come out as
// they are; the caller decides how to render them.
func (d *utf8Decoder) Flush() string {
	s := string(d.pending)
	d.pending = nil
	return s
}
