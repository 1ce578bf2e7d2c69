package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/api"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// ProviderName is the registry key of this provider.
const ProviderName = "elevenlabs"

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabsSTTProvider transcribes through the ElevenLabs Speech-to-Text API.
type ElevenLabsSTTProvider struct {
	cfg     config.EngineConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// ElevenLabsResponse represents the response from ElevenLabs STT API
type ElevenLabsResponse struct {
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
	Text                string  `json:"text"`
	Words               []Word  `json:"words"`
}

// Word is one token of the response; Type is "word", "spacing" or "audio_event".
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

// NewElevenLabsSTTProvider creates a new ElevenLabs STT provider
func NewElevenLabsSTTProvider(cfg config.EngineConfig, logger *zap.Logger) *ElevenLabsSTTProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.ElevenLabs.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ElevenLabsSTTProvider{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (el *ElevenLabsSTTProvider) Name() string { return ProviderName }

func (el *ElevenLabsSTTProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                      ProviderName,
		DisplayName:               "ElevenLabs Speech-to-Text",
		Type:                      provider.ProviderTypeRemote,
		SupportedFormats:          model.SupportedFormats,
		SupportsTimestamps:        true,
		SupportsLanguageDetection: true,
		RequiresInternet:          true,
		RequiresAPIKey:            true,
		DefaultModel:              config.DefaultModel(ProviderName),
		AvailableModels:           []string{"scribe_v1", "scribe_v1_experimental"},
	}
}

// ValidateConfiguration validates the provider configuration
func (el *ElevenLabsSTTProvider) ValidateConfiguration() error {
	if err := config.ValidateAPIKey(el.cfg.ElevenLabs.APIKey, "ElevenLabs"); err != nil {
		return provider.NewError(ProviderName, provider.CodeInvalidConfig, err, "set ELEVENLABS_API_KEY")
	}
	if err := config.ValidateURL(el.baseURL, "ElevenLabs"); err != nil {
		return provider.NewError(ProviderName, provider.CodeInvalidConfig, err, "invalid base URL")
	}
	return nil
}

// Open returns the provider itself; the API keeps no per-batch state.
func (el *ElevenLabsSTTProvider) Open(ctx context.Context) (api.Transcriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, provider.AsTranscriptionError(ProviderName, err)
	}
	return el, nil
}

// Transcript uploads the file and converts the word timings into segments.
func (el *ElevenLabsSTTProvider) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	if _, err := os.Stat(file.Path); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeFileNotFound, err, "cannot read %s", file.Name)
	}

	httpReq, err := el.createHTTPRequest(ctx, file)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeModelFailure, err, "failed to build request")
	}

	resp, err := el.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.AsTranscriptionError(ProviderName, ctx.Err())
		}
		te := provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to call ElevenLabs API")
		te.Retryable = true
		return nil, te
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, el.handleHTTPError(resp)
	}

	var body ElevenLabsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeBadResponse, err, "failed to parse API response")
	}

	el.logger.Debug("elevenlabs response",
		zap.String("file", file.Name),
		zap.Int("words", len(body.Words)),
		zap.String("language", body.LanguageCode))

	return &model.Transcript{
		Segments:            segmentsFromWords(body.Words, body.Text),
		Language:            body.LanguageCode,
		LanguageProbability: body.LanguageProbability,
		Model:               el.cfg.Model,
	}, nil
}

func (el *ElevenLabsSTTProvider) Close() error {
	el.client.CloseIdleConnections()
	return nil
}

// createHTTPRequest creates the HTTP request for the ElevenLabs API
func (el *ElevenLabsSTTProvider) createHTTPRequest(ctx context.Context, file model.AudioFile) (*http.Request, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to copy file data: %w", err)
	}

	if err := writer.WriteField("model_id", el.cfg.Model); err != nil {
		return nil, fmt.Errorf("failed to add model field: %w", err)
	}
	if el.cfg.Language != "" {
		if err := writer.WriteField("language_code", el.cfg.Language); err != nil {
			return nil, fmt.Errorf("failed to add language field: %w", err)
		}
	}
	if err := writer.WriteField("timestamps_granularity", "word"); err != nil {
		return nil, fmt.Errorf("failed to add granularity field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, el.baseURL+"/speech-to-text", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", el.cfg.ElevenLabs.APIKey)
	return req, nil
}

// handleHTTPError handles HTTP error responses
func (el *ElevenLabsSTTProvider) handleHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	detail := strings.TrimSpace(string(body))

	var te *provider.TranscriptionError
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		te = provider.NewError(ProviderName, provider.CodeAPIError, nil, "API key is invalid or missing")
		te.Suggestions = []string{"Check your ELEVENLABS_API_KEY environment variable"}
	case http.StatusTooManyRequests:
		te = provider.NewError(ProviderName, provider.CodeAPIError, nil, "rate limit exceeded")
		te.Retryable = true
	case http.StatusRequestEntityTooLarge:
		te = provider.NewError(ProviderName, provider.CodeAPIError, nil, "audio file is too large")
		te.Suggestions = []string{"Split the recording into smaller files"}
	default:
		te = provider.NewError(ProviderName, provider.CodeAPIError, nil, "API returned status %d: %s", resp.StatusCode, detail)
		te.Retryable = resp.StatusCode >= 500
	}
	return te
}

// segmentsFromWords groups word timings into sentence segments. Spacing tokens
// carry no timing of their own and audio events such as "(laughter)" are
// dropped. Responses without words fall back to one untimed segment.
func segmentsFromWords(words []Word, text string) []model.Segment {
	var (
		segments []model.Segment
		current  strings.Builder
		start    float64
		end      float64
		open     bool
	)
	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			segments = append(segments, model.Segment{Start: start, End: end, Text: t})
		}
		current.Reset()
		open = false
	}

	for _, w := range words {
		switch w.Type {
		case "spacing":
			if open {
				current.WriteString(w.Text)
			}
		case "audio_event":
		default:
			if !open {
				start = w.Start
				open = true
			}
			current.WriteString(w.Text)
			end = w.End
			if endsSentence(w.Text) {
				flush()
			}
		}
	}
	flush()

	if len(segments) == 0 && strings.TrimSpace(text) != "" {
		segments = []model.Segment{{Text: strings.TrimSpace(text)}}
	}
	return segments
}

func endsSentence(word string) bool {
	word = strings.TrimSpace(word)
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}
