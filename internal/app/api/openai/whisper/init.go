package whisper

import (
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/config"
)

func init() {
	// Register openai provider with the factory
	provider.RegisterProvider(ProviderName, createOpenAIProvider)
}

func createOpenAIProvider(cfg config.EngineConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewRemoteTranscriber(cfg, logger), nil
}
