package elevenlabs

import (
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/config"
)

func init() {
	provider.RegisterProvider(ProviderName, createElevenLabsProvider)
}

func createElevenLabsProvider(cfg config.EngineConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewElevenLabsSTTProvider(cfg, logger), nil
}
