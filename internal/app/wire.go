//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"audio-transcriber/internal/app/converter"
	"audio-transcriber/internal/app/metrics"
	"audio-transcriber/internal/app/repository"
	"audio-transcriber/internal/config"
)

// InitializeConverter builds the batch pipeline for cfg. The cleanup func
// closes the history store and the cache.
func InitializeConverter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*converter.Converter, func(), error) {
	wire.Build(
		converter.NewConverter,
		provideTranscriptionProvider,
		provideFormatter,
		provideWriter,
		provideDurationProber,
		provideHistory,
		provideTranscriptCache,
		provideMirror,
		metrics.NewRecorder,
		provideEngineSettings,
	)
	return nil, nil, nil
}

// InitializeTranscriptionDAO opens the history store on its own, for export.
func InitializeTranscriptionDAO(cfg *config.Config) (repository.TranscriptionDAO, func(), error) {
	wire.Build(provideTranscriptionDAO)
	return nil, nil, nil
}
