package faster_whisper

import (
	"context"
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/api"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// ProviderName is the registry key of this provider.
const ProviderName = "faster_whisper"

//go:embed worker.py
var workerScript []byte

// Provider runs faster-whisper through a Python worker process.
type Provider struct {
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewProvider creates a new faster-whisper provider.
func NewProvider(cfg config.EngineConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel(ProviderName)
	}
	if cfg.ComputeType == "" {
		cfg.ComputeType = config.DefaultComputeType(cfg.Device)
	}
	if cfg.FasterWhisper.Python == "" {
		cfg.FasterWhisper.Python = "python3"
	}
	return &Provider{cfg: cfg, logger: logger}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                      ProviderName,
		DisplayName:               "faster-whisper (Local)",
		Type:                      provider.ProviderTypeLocal,
		SupportedFormats:          model.SupportedFormats,
		SupportsTimestamps:        true,
		SupportsLanguageDetection: true,
		RequiresBinary:            true,
		DefaultModel:              "medium.en",
		AvailableModels: []string{
			"tiny", "tiny.en", "base", "base.en", "small", "small.en",
			"medium", "medium.en", "large-v2", "large-v3", "distil-large-v3",
		},
	}
}

func (p *Provider) ValidateConfiguration() error {
	if strings.TrimSpace(p.cfg.Model) == "" {
		return provider.NewError(ProviderName, provider.CodeInvalidConfig, nil, "model is required")
	}
	return nil
}

// Open starts the worker and blocks until the model is loaded.
func (p *Provider) Open(ctx context.Context) (api.Transcriber, error) {
	start := func(ctx context.Context) (*worker, error) {
		return startWorker(ctx, p.cfg, p.logger)
	}
	w, err := start(ctx)
	if err != nil {
		return nil, err
	}
	return &session{cfg: p.cfg, logger: p.logger, start: start, w: w}, nil
}
