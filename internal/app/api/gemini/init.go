package gemini

import (
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/config"
)

func init() {
	provider.RegisterProvider(ProviderName, createGeminiProvider)
}

func createGeminiProvider(cfg config.EngineConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewGeminiTranscriber(cfg, logger), nil
}
