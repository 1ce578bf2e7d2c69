package whisper_cpp

import (
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/audio"
	"audio-transcriber/internal/config"
)

func init() {
	// Register whisper_cpp provider with the factory
	provider.RegisterProvider(ProviderName, createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from configuration
func createWhisperCppProvider(cfg config.EngineConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewLocalTranscriber(cfg, audio.NewTool(logger), logger), nil
}
