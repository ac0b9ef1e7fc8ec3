// Package llm builds the chat completion client behind the openai provider.
package llm

import (
	"context"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/jargone-go/internal/config"
)

// Client is the part of openai.Client the openai explainer calls.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient returns a client for cfg. Without llm.api_key the OPENAI_API_KEY
// environment variable is used, which also picks up a .env file.
func NewClient(cfg config.LLMConfig) *openai.Client {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
