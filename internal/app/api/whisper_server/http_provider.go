package whisper_server

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
const ProviderName = "whisper_server"

// WhisperServerProvider implements transcription via HTTP to a whisper-server instance
type WhisperServerProvider struct {
	cfg    config.EngineConfig
	client *http.Client
	logger *zap.Logger
}

// WhisperServerResponse represents the verbose_json response from whisper-server
type WhisperServerResponse struct {
	Text                        string                 `json:"text,omitempty"`
	Task                        string                 `json:"task,omitempty"`
	Language                    string                 `json:"language,omitempty"`
	Duration                    float64                `json:"duration,omitempty"`
	Segments                    []WhisperServerSegment `json:"segments,omitempty"`
	DetectedLanguage            string                 `json:"detected_language,omitempty"`
	DetectedLanguageProbability float64                `json:"detected_language_probability,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(cfg config.EngineConfig, logger *zap.Logger) *WhisperServerProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	ws := &cfg.WhisperServer
	if ws.InferencePath == "" {
		ws.InferencePath = "/inference"
	}
	if ws.LoadPath == "" {
		ws.LoadPath = "/load"
	}
	ws.BaseURL = strings.TrimRight(ws.BaseURL, "/")

	return &WhisperServerProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (wsp *WhisperServerProvider) Name() string { return ProviderName }

func (wsp *WhisperServerProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                      ProviderName,
		DisplayName:               "Whisper Server (HTTP)",
		Type:                      provider.ProviderTypeRemote,
		SupportedFormats:          model.SupportedFormats,
		SupportsTimestamps:        true,
		SupportsLanguageDetection: true,
		RequiresInternet:          true,
	}
}

// ValidateConfiguration validates the provider configuration
func (wsp *WhisperServerProvider) ValidateConfiguration() error {
	if err := config.ValidateURL(wsp.cfg.WhisperServer.BaseURL, "whisper-server"); err != nil {
		return provider.NewError(ProviderName, provider.CodeInvalidConfig, err, "invalid base URL")
	}
	return nil
}

// Open checks that the server answers and optionally swaps its model.
func (wsp *WhisperServerProvider) Open(ctx context.Context) (api.Transcriber, error) {
	if err := wsp.healthCheck(ctx); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "server at %s is not reachable", wsp.cfg.WhisperServer.BaseURL)
	}
	if wsp.cfg.WhisperServer.LoadModel && wsp.cfg.Model != "" {
		if err := wsp.loadModel(ctx, wsp.cfg.Model); err != nil {
			return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to load model %s", wsp.cfg.Model)
		}
		wsp.logger.Info("whisper-server model loaded", zap.String("model", wsp.cfg.Model))
	}
	return wsp, nil
}

// Transcript posts the file to the inference endpoint.
func (wsp *WhisperServerProvider) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	if _, err := os.Stat(file.Path); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeFileNotFound, err, "cannot read %s", file.Name)
	}

	body, contentType, err := wsp.createMultipartForm(file)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeModelFailure, err, "failed to create multipart form")
	}

	url := wsp.cfg.WhisperServer.BaseURL + wsp.cfg.WhisperServer.InferencePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeModelFailure, err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.AsTranscriptionError(ProviderName, ctx.Err())
		}
		te := provider.NewError(ProviderName, provider.CodeUnavailable, err, "HTTP request failed")
		te.Retryable = true
		return nil, te
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeBadResponse, err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		te := provider.NewError(ProviderName, provider.CodeAPIError, nil,
			"API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData)))
		te.Retryable = resp.StatusCode >= 500
		return nil, te
	}

	tr, err := parseResponse(responseData)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeBadResponse, err, "failed to parse response")
	}
	tr.Model = wsp.cfg.Model
	return tr, nil
}

func (wsp *WhisperServerProvider) Close() error {
	wsp.client.CloseIdleConnections()
	return nil
}

// createMultipartForm creates the multipart form for the API request
func (wsp *WhisperServerProvider) createMultipartForm(file model.AudioFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	f, err := os.Open(file.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %v", err)
	}
	defer f.Close()

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %v", err)
	}

	fields := [][2]string{
		{"response_format", "verbose_json"},
		{"temperature", fmt.Sprintf("%.2f", wsp.cfg.Temperature)},
	}
	if wsp.cfg.Language != "" {
		fields = append(fields, [2]string{"language", wsp.cfg.Language})
	}
	if wsp.cfg.Prompt != "" {
		fields = append(fields, [2]string{"prompt", wsp.cfg.Prompt})
	}
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %v", kv[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType(), nil
}

// parseResponse converts a verbose_json body into a transcript.
func parseResponse(data []byte) (*model.Transcript, error) {
	var resp WhisperServerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose JSON response: %v", err)
	}

	tr := &model.Transcript{
		Language:            resp.Language,
		LanguageProbability: resp.DetectedLanguageProbability,
		Duration:            resp.Duration,
	}
	if tr.Language == "" {
		tr.Language = resp.DetectedLanguage
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
	return tr, nil
}

func (wsp *WhisperServerProvider) healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsp.cfg.WhisperServer.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := wsp.client.Do(req)
	if err != nil {
		return fmt.Errorf("server connectivity test failed: %w", err)
	}
	defer resp.Body.Close()

	// 503 can come from a proxy in front of a healthy server.
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("server returned error status: %d", resp.StatusCode)
	}
	return nil
}

// loadModel loads a new model on the remote server
func (wsp *WhisperServerProvider) loadModel(ctx context.Context, modelPath string) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model", modelPath); err != nil {
		return fmt.Errorf("failed to write model field: %v", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %v", err)
	}

	url := wsp.cfg.WhisperServer.BaseURL + wsp.cfg.WhisperServer.LoadPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to create load model request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := wsp.client.Do(req)
	if err != nil {
		return fmt.Errorf("load model request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("load model failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
