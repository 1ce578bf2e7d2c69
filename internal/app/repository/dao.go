package repository

import (
	"context"

	"audio-transcriber/internal/app/model"
)

// TranscriptionDAO persists the per-file history of transcription runs.
type TranscriptionDAO interface {
	Close() error

	RecordToDB(ctx context.Context, rec *model.TranscriptionRecord) error

	// GetByRun returns the records of one run in insertion order.
	GetByRun(ctx context.Context, runID string) ([]model.TranscriptionRecord, error)

	// GetAll returns every record, newest first.
	GetAll(ctx context.Context) ([]model.TranscriptionRecord, error)

	// LastRunID returns the run ID of the newest record, or "" when empty.
	LastRunID(ctx context.Context) (string, error)
}

// NopDAO discards records. It is used when history is disabled.
type NopDAO struct{}

func (NopDAO) Close() error { return nil }

func (NopDAO) RecordToDB(context.Context, *model.TranscriptionRecord) error { return nil }

func (NopDAO) GetByRun(context.Context, string) ([]model.TranscriptionRecord, error) {
	return nil, nil
}

func (NopDAO) GetAll(context.Context) ([]model.TranscriptionRecord, error) { return nil, nil }

func (NopDAO) LastRunID(context.Context) (string, error) { return "", nil }
