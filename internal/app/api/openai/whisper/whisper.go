package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api"
	openaiclient "audio-transcriber/internal/app/api/openai"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// ProviderName is the registry key of this provider.
const ProviderName = "openai"

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(cfg config.EngineConfig, logger *zap.Logger) *RemoteTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	return &RemoteTranscriber{cfg: cfg, logger: logger}
}

func (rt *RemoteTranscriber) Name() string { return ProviderName }

func (rt *RemoteTranscriber) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                      ProviderName,
		DisplayName:               "OpenAI Whisper API",
		Type:                      provider.ProviderTypeRemote,
		SupportedFormats:          model.SupportedFormats,
		SupportsTimestamps:        true,
		SupportsLanguageDetection: true,
		RequiresInternet:          true,
		RequiresAPIKey:            true,
		DefaultModel:              openai.Whisper1,
		AvailableModels:           []string{openai.Whisper1},
	}
}

// ValidateConfiguration validates the provider configuration
func (rt *RemoteTranscriber) ValidateConfiguration() error {
	if rt.cfg.OpenAI.APIKey == "" {
		te := provider.NewError(ProviderName, provider.CodeInvalidConfig, nil, "API key is required")
		te.Suggestions = []string{"Set OPENAI_API_KEY or engine.openai.api_key"}
		return te
	}
	return nil
}

// Open builds the API client. The remote model needs no loading.
func (rt *RemoteTranscriber) Open(ctx context.Context) (api.Transcriber, error) {
	return &session{
		RemoteTranscriber: rt,
		client:            openaiclient.NewClient(rt.cfg.OpenAI),
	}, nil
}

type session struct {
	*RemoteTranscriber
	client *openai.Client
}

// Transcript uploads the file and requests verbose_json to get segments.
func (s *session) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	if _, err := os.Stat(file.Path); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeFileNotFound, err, "cannot read %s", file.Name)
	}

	req := openai.AudioRequest{
		Model:       s.cfg.Model,
		FilePath:    file.Path,
		Prompt:      s.cfg.Prompt,
		Temperature: s.cfg.Temperature,
		Language:    s.cfg.Language,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, handleAPIError(ctx, err)
	}

	tr := &model.Transcript{
		Language: resp.Language,
		Duration: resp.Duration,
		Model:    s.cfg.Model,
	}
	for _, seg := range resp.Segments {
		tr.Segments = append(tr.Segments, model.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	if len(tr.Segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		tr.Segments = []model.Segment{{Text: strings.TrimSpace(resp.Text)}}
	}

	s.logger.Debug("openai transcription done",
		zap.String("file", file.Name),
		zap.String("language", tr.Language),
		zap.Int("segments", len(tr.Segments)))
	return tr, nil
}

func (s *session) Close() error { return nil }

// handleAPIError converts OpenAI API errors to TranscriptionError
func handleAPIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return provider.AsTranscriptionError(ProviderName, ctx.Err())
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return provider.NewError(ProviderName, provider.CodeAPIError, err, "transcription request failed")
	}

	te := provider.NewError(ProviderName, provider.CodeAPIError, err, "OpenAI API error (%d)", apiErr.HTTPStatusCode)
	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized:
		te.Message = "OpenAI API key is invalid or missing"
		te.Suggestions = []string{"Check your OPENAI_API_KEY environment variable"}
	case http.StatusTooManyRequests:
		te.Message = "OpenAI API rate limit exceeded"
		te.Retryable = true
	case http.StatusRequestEntityTooLarge:
		te.Message = "Audio file is too large for OpenAI API"
		te.Suggestions = []string{"Files must be under 25 MB"}
	case http.StatusBadRequest:
		te.Message = fmt.Sprintf("Invalid audio file: %s", apiErr.Message)
	default:
		te.Retryable = apiErr.HTTPStatusCode >= 500
	}
	return te
}
