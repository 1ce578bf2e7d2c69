package whisper_server

import (
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/config"
)

func init() {
	provider.RegisterProvider(ProviderName, createWhisperServerProvider)
}

func createWhisperServerProvider(cfg config.EngineConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewWhisperServerProvider(cfg, logger), nil
}
