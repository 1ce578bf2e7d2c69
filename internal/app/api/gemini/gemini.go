package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"audio-transcriber/internal/app/api"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// ProviderName is the registry key of this provider.
const ProviderName = "gemini"

// maxInlineBytes is the request size limit for inline audio data.
const maxInlineBytes = 20 << 20

const instruction = "Transcribe the speech in this audio verbatim. " +
	"Return only the transcript text, without timestamps, speaker labels or commentary."

// GeminiTranscriber transcribes audio with Gemini multimodal models. Gemini
// returns no timing, so each file yields one untimed segment.
type GeminiTranscriber struct {
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewGeminiTranscriber creates a new Gemini transcriber.
func NewGeminiTranscriber(cfg config.EngineConfig, logger *zap.Logger) *GeminiTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel(ProviderName)
	}
	return &GeminiTranscriber{cfg: cfg, logger: logger}
}

func (g *GeminiTranscriber) Name() string { return ProviderName }

func (g *GeminiTranscriber) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:             ProviderName,
		DisplayName:      "Google Gemini",
		Type:             provider.ProviderTypeRemote,
		SupportedFormats: model.SupportedFormats,
		RequiresInternet: true,
		RequiresAPIKey:   true,
		DefaultModel:     "gemini-2.0-flash",
		AvailableModels:  []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
	}
}

func (g *GeminiTranscriber) ValidateConfiguration() error {
	if g.cfg.Gemini.APIKey == "" {
		te := provider.NewError(ProviderName, provider.CodeInvalidConfig, nil, "API key is required")
		te.Suggestions = []string{"Set GEMINI_API_KEY or engine.gemini.api_key"}
		return te
	}
	return nil
}

func (g *GeminiTranscriber) Open(ctx context.Context) (api.Transcriber, error) {
	cc := &genai.ClientConfig{
		APIKey:  g.cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.cfg.Gemini.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.Gemini.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to create Gemini client")
	}
	return &session{GeminiTranscriber: g, client: client}, nil
}

type session struct {
	*GeminiTranscriber
	client *genai.Client
}

func (s *session) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeFileNotFound, err, "cannot read %s", file.Name)
	}
	if len(data) > maxInlineBytes {
		return nil, provider.NewError(ProviderName, provider.CodeInvalidConfig, nil,
			"%s is %d bytes, above the %d byte inline limit", file.Name, len(data), maxInlineBytes)
	}

	prompt := instruction
	if s.cfg.Language != "" {
		prompt += fmt.Sprintf(" The spoken language is %q.", s.cfg.Language)
	}
	if s.cfg.Prompt != "" {
		prompt += " Context: " + s.cfg.Prompt
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, file.Format.MIMEType()),
		}, genai.RoleUser),
	}
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.cfg.Temperature),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.Model, contents, gc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.AsTranscriptionError(ProviderName, ctx.Err())
		}
		return nil, provider.NewError(ProviderName, provider.CodeAPIError, err, "generate content failed for %s", file.Name)
	}

	tr := &model.Transcript{Language: s.cfg.Language, Model: s.cfg.Model}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		tr.Segments = []model.Segment{{Text: text}}
	}
	return tr, nil
}

func (s *session) Close() error { return nil }
