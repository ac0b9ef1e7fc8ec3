package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/jargone-go/internal/config"
)

// newChatServer answers chat completions and reports each Authorization header.
func newChatServer(t *testing.T) (*httptest.Server, <-chan string) {
	t.Helper()
	auths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"{}"}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, auths
}

func ask(t *testing.T, c Client) openai.ChatCompletionResponse {
	t.Helper()
	resp, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	return resp
}

func TestNewClient_UsesConfiguredKeyAndBaseURL(t *testing.T) {
	srv, auths := newChatServer(t)
	t.Setenv("OPENAI_API_KEY", "from-env")

	resp := ask(t, NewClient(config.LLMConfig{BaseURL: srv.URL, APIKey: "from-config"}))
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Bearer from-config", <-auths)
}

func TestNewClient_FallsBackToEnvKey(t *testing.T) {
	srv, auths := newChatServer(t)
	t.Setenv("OPENAI_API_KEY", "from-env")

	ask(t, NewClient(config.LLMConfig{BaseURL: srv.URL}))
	assert.Equal(t, "Bearer from-env", <-auths)
}
