package app

import (
	"context"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/audio"
	"audio-transcriber/internal/app/cache"
	"audio-transcriber/internal/app/converter"
	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/formatter"
	"audio-transcriber/internal/app/output"
	"audio-transcriber/internal/app/repository"
	"audio-transcriber/internal/app/repository/pg"
	"audio-transcriber/internal/app/repository/sqlite"
	"audio-transcriber/internal/app/storage"
	"audio-transcriber/internal/config"
)

// provideTranscriptionProvider creates the configured engine from the registry.
// The provider packages register themselves when imported by main.
func provideTranscriptionProvider(cfg *config.Config, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return provider.Create(cfg.Engine, logger)
}

func provideFormatter(cfg *config.Config) *formatter.Formatter {
	return formatter.New(formatter.Options{
		MaxSentences: cfg.Formatter.MaxSentences,
		GapSeconds:   cfg.Formatter.GapSeconds,
	})
}

func provideWriter(cfg *config.Config) *output.Writer {
	return output.NewWriter(cfg.Layout)
}

func provideDurationProber(logger *zap.Logger) converter.DurationProber {
	return audio.NewTool(logger)
}

func provideEngineSettings(cfg *config.Config) converter.EngineSettings {
	return converter.EngineSettings{
		Model:       cfg.Engine.Model,
		Language:    cfg.Engine.Language,
		Device:      cfg.Engine.Device,
		ComputeType: cfg.Engine.ComputeType,
		BeamSize:    cfg.Engine.BeamSize,
		VADFilter:   cfg.Engine.VADFilter,
		Prompt:      cfg.Engine.Prompt,
		Temperature: cfg.Engine.Temperature,
		Timeout:     cfg.Engine.Timeout,
	}
}

// provideTranscriptionDAO opens the history store selected by cfg.History.
func provideTranscriptionDAO(cfg *config.Config) (repository.TranscriptionDAO, func(), error) {
	var (
		dao repository.TranscriptionDAO
		err error
	)
	switch cfg.History.Driver {
	case "none":
		dao = repository.NopDAO{}
	case "postgres":
		dao, err = pg.NewPostgresDB(cfg.History.DSN)
	default:
		dao, err = sqlite.NewSQLiteDB(cfg.History.DSN)
	}
	if err != nil {
		return nil, nil, apperrors.Wrapf(err, "failed to open %s history store", cfg.History.Driver)
	}
	return dao, func() { _ = dao.Close() }, nil
}

// provideHistory is provideTranscriptionDAO for the batch, where an unavailable
// store only disables history.
func provideHistory(cfg *config.Config, logger *zap.Logger) (repository.TranscriptionDAO, func()) {
	dao, cleanup, err := provideTranscriptionDAO(cfg)
	if err != nil {
		logger.Warn("history disabled", zap.Error(err))
		return repository.NopDAO{}, func() {}
	}
	return dao, cleanup
}

func provideTranscriptCache(cfg *config.Config) (cache.TranscriptCache, func()) {
	if cfg.Cache.RedisAddr == "" {
		return cache.NopCache{}, func() {}
	}
	c := cache.NewRedisCache(cfg.Cache)
	return c, func() { _ = c.Close() }
}

// provideMirror returns nil when mirroring is not configured or the bucket
// cannot be reached.
func provideMirror(ctx context.Context, cfg *config.Config, logger *zap.Logger) storage.Mirror {
	if cfg.Mirror.Endpoint == "" {
		return nil
	}
	m, err := storage.NewMinioMirror(ctx, cfg.Mirror)
	if err != nil {
		logger.Warn("transcript mirror disabled", zap.String("endpoint", cfg.Mirror.Endpoint), zap.Error(err))
		return nil
	}
	return m
}
