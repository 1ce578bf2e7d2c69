package openai

import (
	"github.com/sashabaranov/go-openai"

	"audio-transcriber/internal/config"
)

// NewClient builds an OpenAI client. BaseURL allows OpenAI-compatible
// servers; it must include the /v1 suffix.
func NewClient(cfg config.OpenAIConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}
