package provider

import (
	"context"

	"audio-transcriber/internal/app/api"
)

// TranscriptionProvider describes a speech-to-text backend and opens model
// handles on it. Creating a provider never loads a model; Open does.
type TranscriptionProvider interface {
	// Name is the registry key, e.g. "faster_whisper".
	Name() string

	// Info returns static metadata and capabilities.
	Info() ProviderInfo

	// ValidateConfiguration checks settings without touching the model.
	ValidateConfiguration() error

	// Open acquires the model handle used for a whole batch. The caller
	// must Close it on every exit path.
	Open(ctx context.Context) (api.Transcriber, error)
}
