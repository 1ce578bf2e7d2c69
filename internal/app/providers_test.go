package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audio-transcriber/internal/app/cache"
	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/repository"
	"audio-transcriber/internal/app/repository/sqlite"
	"audio-transcriber/internal/config"
)

func TestProvideTranscriptionDAO(t *testing.T) {
	cfg := config.Default()

	cfg.History.Driver = "none"
	dao, cleanup, err := provideTranscriptionDAO(cfg)
	require.NoError(t, err)
	assert.Equal(t, repository.NopDAO{}, dao)
	cleanup()

	cfg.History.Driver = "sqlite"
	cfg.History.DSN = filepath.Join(t.TempDir(), "data", "transcription.db")
	dao, cleanup, err = provideTranscriptionDAO(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLiteDB{}, dao)
	cleanup()
}

func TestProvideHistory_FallsBackWhenUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.History.Driver = "postgres"
	cfg.History.DSN = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"

	_, _, err := provideTranscriptionDAO(cfg)
	require.Error(t, err)

	dao, cleanup := provideHistory(cfg, zap.NewNop())
	defer cleanup()
	assert.Equal(t, repository.NopDAO{}, dao)
}

func TestProvideOptionalSinks(t *testing.T) {
	cfg := config.Default()

	c, cleanup := provideTranscriptCache(cfg)
	cleanup()
	assert.Equal(t, cache.NopCache{}, c)

	cfg.Cache.RedisAddr = "127.0.0.1:6379"
	c, cleanup = provideTranscriptCache(cfg)
	assert.IsType(t, &cache.RedisCache{}, c)
	cleanup()

	assert.Nil(t, provideMirror(context.Background(), cfg, zap.NewNop()))
}

func TestInitializeConverter_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Provider = "no_such_engine"

	_, _, err := InitializeConverter(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProviderNotFound))
}
