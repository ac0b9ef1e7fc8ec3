package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_PostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/explain", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"explanation":"ok","definitions":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/explain")
	out, err := c.Explain(context.Background(), Query{Text: "synergize the KPIs", ExplanationLevel: "expert"})
	require.NoError(t, err)
	require.JSONEq(t, `{"explanation":"ok","definitions":[]}`, string(out))

	assert.Equal(t, "synergize the KPIs", got["text"])
	assert.Equal(t, "expert", got["explanationLevel"])
	assert.NotContains(t, got, "userRole", "empty optional fields are omitted")
}

func TestHTTPClient_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError, http.StatusMultipleChoices} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte(`{"explanation":"should never be parsed"}`))
		}))

		out, err := NewHTTPClient(srv.URL).Explain(context.Background(), Query{Text: "x"})
		srv.Close()

		require.Nil(t, out)
		var se *StatusError
		require.True(t, errors.As(err, &se), "status %d", code)
		require.Equal(t, code, se.StatusCode)
		require.False(t, errors.Is(err, ErrBlocked))
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).Explain(context.Background(), Query{Text: "x"})
	require.Error(t, err)
	var se *StatusError
	require.False(t, errors.As(err, &se))
}

type mockLLM struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (m *mockLLM) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.req = r
	return m.resp, m.err
}

func TestOpenAIExplainer_ReturnsContent(t *testing.T) {
	m := &mockLLM{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: `{"explanation":"plain words"}`}},
	}}}
	e := NewOpenAIExplainer(m, "gpt-test")

	out, err := e.Explain(context.Background(), Query{Text: "leverage", UserRole: "intern", AdditionalContext: "marketing"})
	require.NoError(t, err)
	require.Equal(t, `{"explanation":"plain words"}`, string(out))

	require.Equal(t, "gpt-test", m.req.Model)
	require.Len(t, m.req.Messages, 2)
	assert.Contains(t, m.req.Messages[1].Content, "leverage")
	assert.Contains(t, m.req.Messages[1].Content, "intern")
	assert.Contains(t, m.req.Messages[1].Content, "marketing")
}

func TestOpenAIExplainer_ErrorMapping(t *testing.T) {
	ctx := context.Background()

	blocked := NewOpenAIExplainer(&mockLLM{err: &openai.APIError{HTTPStatusCode: http.StatusForbidden, Message: "challenge"}}, "m")
	_, err := blocked.Explain(ctx, Query{Text: "x"})
	require.True(t, errors.Is(err, ErrBlocked))

	failing := NewOpenAIExplainer(&mockLLM{err: &openai.RequestError{HTTPStatusCode: http.StatusBadGateway}}, "m")
	_, err = failing.Explain(ctx, Query{Text: "x"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusBadGateway, se.StatusCode)

	offline := NewOpenAIExplainer(&mockLLM{err: context.DeadlineExceeded}, "m")
	_, err = offline.Explain(ctx, Query{Text: "x"})
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	empty := NewOpenAIExplainer(&mockLLM{}, "m")
	_, err = empty.Explain(ctx, Query{Text: "x"})
	require.Error(t, err)
}
