package testutil

import (
	"context"
	"sync"

	"audio-transcriber/internal/app/api"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
)

// MockTranscriber returns scripted transcripts keyed by file name and records
// every call. Files without a scripted response get DefaultResponse.
type MockTranscriber struct {
	mu sync.Mutex

	DefaultResponse *model.Transcript
	ResponseMap     map[string]*model.Transcript
	ErrorMap        map[string]error

	Calls  []string
	Closed int
}

var _ api.Transcriber = (*MockTranscriber)(nil)

// NewMockTranscriber creates a MockTranscriber with a two-segment default transcript.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		DefaultResponse: &model.Transcript{
			Language:            "en",
			LanguageProbability: 0.97,
			Duration:            4,
			Segments: []model.Segment{
				{Start: 0, End: 1.5, Text: "Hello there."},
				{Start: 2, End: 4, Text: "This is a mock transcription result."},
			},
		},
		ResponseMap: map[string]*model.Transcript{},
		ErrorMap:    map[string]error{},
	}
}

func (m *MockTranscriber) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, file.Name)
	if err := ctx.Err(); err != nil {
		return nil, provider.NewError("mock", provider.CodeCanceled, err, "canceled")
	}
	if err, ok := m.ErrorMap[file.Name]; ok {
		return nil, err
	}
	resp, ok := m.ResponseMap[file.Name]
	if !ok {
		resp = m.DefaultResponse
	}
	out := *resp
	out.Segments = append([]model.Segment(nil), resp.Segments...)
	return &out, nil
}

func (m *MockTranscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	return nil
}

// CallCount returns the number of Transcript calls so far.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockProvider opens Transcriber, or fails with OpenErr.
type MockProvider struct {
	ProviderName string
	Transcriber  *MockTranscriber
	OpenErr      error

	mu     sync.Mutex
	Opened int
}

var _ provider.TranscriptionProvider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{ProviderName: "mock", Transcriber: NewMockTranscriber()}
}

func (p *MockProvider) Name() string { return p.ProviderName }

func (p *MockProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:               p.ProviderName,
		DisplayName:        "Mock",
		Type:               provider.ProviderTypeLocal,
		SupportedFormats:   model.SupportedFormats,
		SupportsTimestamps: true,
	}
}

func (p *MockProvider) ValidateConfiguration() error { return nil }

func (p *MockProvider) Open(context.Context) (api.Transcriber, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Opened++
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	return p.Transcriber, nil
}

// OpenCount returns how many times Open was called.
func (p *MockProvider) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Opened
}
