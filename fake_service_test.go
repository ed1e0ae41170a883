package penpal

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	Role    string
	Content string
}

type fakeRequest struct {
	Stream           bool
	Model            string
	CustomIdentifier string
	Messages         []fakeMessage
}

// last returns the content of the final message of the request.
func (r fakeRequest) last() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// fakeService is a chat-completion endpoint. Streaming requests are answered
// by stream, the others by complete.
type fakeService struct {
	t      *testing.T
	server *httptest.Server

	stream   func(w http.ResponseWriter, r *http.Request, req fakeRequest)
	complete func(req fakeRequest) (status int, content string)

	mu       sync.Mutex
	requests []fakeRequest
}

func newFakeService(t *testing.T) *fakeService {
	f := &fakeService{t: t}
	f.stream = func(w http.ResponseWriter, r *http.Request, req fakeRequest) {
		writeStream(w, streamBody("Hello", " there"))
	}
	f.complete = func(req fakeRequest) (int, string) {
		return http.StatusOK, "[]"
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) client() *Client {
	cfg := LLMConfig{
		APIKey:     "sk-test",
		BaseURL:    f.server.URL,
		Model:      "gpt-4o",
		MaxRetries: 0,
	}
	return cfg.NewLLMClient()
}

func (f *fakeService) recorded() []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeRequest{}, f.requests...)
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("Authorization") != "Bearer sk-test" {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)
	req := decodeFakeRequest(f.t, body)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if req.Stream {
		f.stream(w, r, req)
		return
	}

	status, content := f.complete(req)
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
		return
	}
	writeCompletion(w, content)
}

func decodeFakeRequest(t *testing.T, body []byte) fakeRequest {
	var raw struct {
		Stream           bool   `json:"stream"`
		Model            string `json:"model"`
		CustomIdentifier string `json:"custom_identifier"`
		Messages         []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &raw))

	req := fakeRequest{Stream: raw.Stream, Model: raw.Model, CustomIdentifier: raw.CustomIdentifier}
	for _, m := range raw.Messages {
		var content string
		require.NoError(t, json.Unmarshal(m.Content, &content))
		req.Messages = append(req.Messages, fakeMessage{Role: m.Role, Content: content})
	}
	return req
}

func writeCompletion(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeStream sends body in a few flushed pieces.
func writeStream(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	for len(body) > 0 {
		n := min(len(body), 37)
		io.WriteString(w, body[:n])
		flusher.Flush()
		body = body[n:]
	}
}

func commentsJSON(texts ...string) string {
	items := make([]string, len(texts))
	for i, text := range texts {
		items[i] = `{"text":"` + text + `","detail":"More about ` + text + `"}`
	}
	return "```json\n[" + strings.Join(items, ",") + "]\n```"
}
