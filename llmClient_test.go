package penpal

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMClientDefaults(t *testing.T) {
	client := (&LLMConfig{APIKey: "sk-test", MaxRetries: -1}).NewLLMClient()
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
	assert.Equal(t, 0, client.config.MaxRetries)

	client = (&LLMConfig{BaseURL: "http://localhost:8080/v1"}).NewLLMClient()
	assert.Equal(t, "http://localhost:8080/v1/", client.config.BaseURL)
}

func TestClientNotConfigured(t *testing.T) {
	client := (&LLMConfig{}).NewLLMClient()
	messages := NewMessageList(UserMessage("hi"))

	_, err := client.Complete(context.Background(), messages)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.Stream(context.Background(), messages)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientComplete(t *testing.T) {
	f := newFakeService(t)
	f.complete = func(req fakeRequest) (int, string) {
		return http.StatusOK, "Looks good."
	}

	ctx := context.WithValue(context.Background(), ContextKey("sessionID"), "session-1")
	completion, err := f.client().Complete(ctx, NewMessageList(SystemMessage("be brief"), UserMessage("hi")))
	require.NoError(t, err)
	assert.Equal(t, "Looks good.", completion.Content)
	assert.Equal(t, Usage{PromptTokens: 100, CompletionTokens: 20}, completion.Usage)

	requests := f.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "session-1", requests[0].CustomIdentifier)
	assert.Equal(t, []fakeMessage{{Role: "system", Content: "be brief"}, {Role: "user", Content: "hi"}}, requests[0].Messages)
}

func TestClientStream(t *testing.T) {
	f := newFakeService(t)
	f.stream = func(w http.ResponseWriter, r *http.Request, req fakeRequest) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		writeStream(w, streamBody("Hi"))
	}

	body, err := f.client().Stream(context.Background(), NewMessageList(UserMessage("hi")))
	require.NoError(t, err)
	defer body.Close()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, streamBody("Hi"), string(raw))
}

func TestClientStreamStatusError(t *testing.T) {
	f := newFakeService(t)
	cfg := LLMConfig{APIKey: "sk-wrong", BaseURL: f.server.URL}

	_, err := cfg.NewLLMClient().Stream(context.Background(), NewMessageList(UserMessage("hi")))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "bad key")
	assert.Empty(t, f.recorded())
}
