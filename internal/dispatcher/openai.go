package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/jargone-go/internal/llm"
)

const systemPrompt = `You decode workplace jargon. Reply with a JSON object only:
{"explanation": "<plain-language explanation>", "definitions": [{"entity": "<term>", "definition": "<meaning>"}]}
List every acronym or term of art found in the text under definitions.`

// OpenAIExplainer asks a chat model for the same document the local service
// returns.
type OpenAIExplainer struct {
	client llm.Client
	model  string
}

func NewOpenAIExplainer(client llm.Client, model string) *OpenAIExplainer {
	return &OpenAIExplainer{client: client, model: model}
}

func (o *OpenAIExplainer) Explain(ctx context.Context, q Query) ([]byte, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(q)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}
	return []byte(resp.Choices[0].Message.Content), nil
}

func userPrompt(q Query) string {
	var sb strings.Builder
	level := q.ExplanationLevel
	if level == "" {
		level = q.Department
	}
	if level != "" {
		fmt.Fprintf(&sb, "Explanation level: %s\n", level)
	}
	if q.UserRole != "" {
		fmt.Fprintf(&sb, "Reader's role: %s\n", q.UserRole)
	}
	if q.AdditionalContext != "" {
		fmt.Fprintf(&sb, "Context: %s\n", q.AdditionalContext)
	}
	sb.WriteString("Text:\n")
	sb.WriteString(q.Text)
	return sb.String()
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("request failed: %w", err)
	}
	if status == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrBlocked, err)
	}
	return &StatusError{StatusCode: status, Status: fmt.Sprintf("%d %s", status, http.StatusText(status))}
}
