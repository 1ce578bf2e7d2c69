package whisper_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-transcriber/internal/app/api/provider"
	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

type mockServer struct {
	mu          sync.Mutex
	fields      map[string]string
	loadedModel string
	status      int
	body        string
}

func createMockWhisperServer(t *testing.T, m *mockServer) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/load", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.loadedModel = r.FormValue("model")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/inference", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			m.fields[k] = v[0]
		}
		m.mu.Unlock()
		w.WriteHeader(m.status)
		fmt.Fprint(w, m.body)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func createTestAudioFile(t *testing.T) model.AudioFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF0000WAVE"), 0644))
	return model.AudioFile{Path: path, Name: "meeting.wav", Format: model.FormatWAV}
}

func engineConfig(baseURL string) config.EngineConfig {
	cfg := config.Default().Engine
	cfg.Provider = ProviderName
	cfg.Model = "models/ggml-base.en.bin"
	cfg.Language = "en"
	cfg.WhisperServer.BaseURL = baseURL + "/"
	return cfg
}

func TestWhisperServerProvider_Transcript(t *testing.T) {
	m := &mockServer{status: http.StatusOK, body: `{
		"task": "transcribe",
		"language": "english",
		"duration": 9.0,
		"detected_language": "en",
		"detected_language_probability": 0.91,
		"text": " Good morning. Let's begin.",
		"segments": [
			{"id": 0, "start": 0.0, "end": 1.5, "text": " Good morning."},
			{"id": 1, "start": 5.0, "end": 9.0, "text": " Let's begin."}
		]
	}`}
	server := createMockWhisperServer(t, m)

	p := NewWhisperServerProvider(engineConfig(server.URL), nil)
	require.NoError(t, p.ValidateConfiguration())

	tr, err := p.Open(context.Background())
	require.NoError(t, err)
	defer tr.Close()

	got, err := tr.Transcript(context.Background(), createTestAudioFile(t))
	require.NoError(t, err)

	assert.Equal(t, "english", got.Language)
	assert.Equal(t, 0.91, got.LanguageProbability)
	assert.Equal(t, 9.0, got.Duration)
	assert.Equal(t, []model.Segment{
		{Start: 0, End: 1.5, Text: "Good morning."},
		{Start: 5, End: 9, Text: "Let's begin."},
	}, got.Segments)

	assert.Equal(t, "verbose_json", m.fields["response_format"])
	assert.Equal(t, "en", m.fields["language"])
	assert.Equal(t, "0.00", m.fields["temperature"])
	assert.Empty(t, m.loadedModel)
}

func TestWhisperServerProvider_LoadModel(t *testing.T) {
	m := &mockServer{status: http.StatusOK, body: `{"text":""}`}
	server := createMockWhisperServer(t, m)

	cfg := engineConfig(server.URL)
	cfg.WhisperServer.LoadModel = true

	tr, err := NewWhisperServerProvider(cfg, nil).Open(context.Background())
	require.NoError(t, err)
	defer tr.Close()
	assert.Equal(t, "models/ggml-base.en.bin", m.loadedModel)
}

func TestWhisperServerProvider_ErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"bad_request", http.StatusBadRequest, false},
		{"server_error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := createMockWhisperServer(t, &mockServer{status: tt.status, body: "failed to decode audio"})

			tr, err := NewWhisperServerProvider(engineConfig(server.URL), nil).Open(context.Background())
			require.NoError(t, err)

			_, err = tr.Transcript(context.Background(), createTestAudioFile(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrTranscription))
			assert.Contains(t, err.Error(), "failed to decode audio")

			var te *provider.TranscriptionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.retryable, te.Retryable)
		})
	}
}

func TestWhisperServerProvider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewWhisperServerProvider(engineConfig(url), nil).Open(context.Background())
	var te *provider.TranscriptionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, provider.CodeUnavailable, te.Code)
}

func TestWhisperServerProvider_ValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid_http", "http://192.168.1.100:8080", false},
		{"valid_https", "https://whisper.example.com", false},
		{"missing", "", true},
		{"no_scheme", "localhost:8080", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.EngineConfig{WhisperServer: config.WhisperServerConfig{BaseURL: tt.baseURL}}
			err := NewWhisperServerProvider(cfg, nil).ValidateConfiguration()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	tr, err := parseResponse([]byte(`{"text":" plain text only ","detected_language":"de"}`))
	require.NoError(t, err)
	assert.Equal(t, "de", tr.Language)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, "plain text only", tr.Segments[0].Text)

	_, err = parseResponse([]byte("<html>"))
	assert.Error(t, err)
}
