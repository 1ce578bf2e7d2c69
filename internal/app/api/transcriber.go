package api

import (
	"context"

	"audio-transcriber/internal/app/model"
)

// Transcriber is an opened model handle. Implementations may serialize calls
// internally; Close releases the model and any helper processes.
type Transcriber interface {
	Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error)
	Close() error
}
