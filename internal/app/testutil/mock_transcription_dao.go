package testutil

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/app/repository"
)

// MockTranscriptionDAO keeps records in memory. RecordErr makes every insert fail.
type MockTranscriptionDAO struct {
	mu        sync.Mutex
	Records   []model.TranscriptionRecord
	RecordErr error
	Closed    bool
}

var _ repository.TranscriptionDAO = (*MockTranscriptionDAO)(nil)

func NewMockTranscriptionDAO() *MockTranscriptionDAO {
	return &MockTranscriptionDAO{}
}

func (m *MockTranscriptionDAO) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockTranscriptionDAO) RecordToDB(_ context.Context, rec *model.TranscriptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	rec.ID = int64(len(m.Records) + 1)
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MockTranscriptionDAO) GetByRun(_ context.Context, runID string) ([]model.TranscriptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Filter(m.Records, func(r model.TranscriptionRecord, _ int) bool {
		return r.RunID == runID
	}), nil
}

func (m *MockTranscriptionDAO) GetAll(context.Context) ([]model.TranscriptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Reverse(append([]model.TranscriptionRecord(nil), m.Records...)), nil
}

func (m *MockTranscriptionDAO) LastRunID(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Records) == 0 {
		return "", nil
	}
	return m.Records[len(m.Records)-1].RunID, nil
}
