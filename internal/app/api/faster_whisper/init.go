package faster_whisper

import (
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/config"
)

func init() {
	provider.RegisterProvider(ProviderName, createFasterWhisperProvider)
}

func createFasterWhisperProvider(cfg config.EngineConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewProvider(cfg, logger), nil
}
