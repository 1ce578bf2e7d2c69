package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/app/repository"
)

var _ repository.TranscriptionDAO = (*SQLiteDB)(nil)

func TestNewSQLiteDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "transcription.db")

	dao, err := NewSQLiteDB(path)
	require.NoError(t, err)
	defer dao.Close()

	ctx := context.Background()
	runID, err := dao.LastRunID(ctx)
	require.NoError(t, err)
	assert.Empty(t, runID)

	records := []*model.TranscriptionRecord{
		{RunID: "run-1", FileName: "a.mp3", FilePath: "audio/a.mp3", Format: "mp3", Provider: "faster_whisper", Language: "en"},
		{RunID: "run-2", FileName: "b.wav", FilePath: "audio/b.wav", Format: "wav", Provider: "faster_whisper"},
		{RunID: "run-2", FileName: "c.wav", FilePath: "audio/c.wav", Format: "wav", Provider: "faster_whisper", HasError: true, ErrorMessage: "decode failed"},
	}
	for _, rec := range records {
		require.NoError(t, dao.RecordToDB(ctx, rec))
	}

	runID, err = dao.LastRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", runID)

	byRun, err := dao.GetByRun(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, byRun, 2)
	assert.Equal(t, "b.wav", byRun[0].FileName)
	assert.True(t, byRun[1].HasError)

	all, err := dao.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.wav", all[0].FileName)
	assert.Equal(t, "en", all[2].Language)
}

func TestNewSQLiteDB_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	ctx := context.Background()

	dao, err := NewSQLiteDB(path)
	require.NoError(t, err)
	require.NoError(t, dao.RecordToDB(ctx, &model.TranscriptionRecord{RunID: "r", FileName: "a.mp3", FilePath: "a.mp3", Format: "mp3", Provider: "p"}))
	require.NoError(t, dao.Close())

	dao, err = NewSQLiteDB(path)
	require.NoError(t, err)
	defer dao.Close()

	all, err := dao.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNewWithDB_SchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS transcriptions").WillReturnError(errors.New("readonly"))
	mock.ExpectClose()

	_, err = newWithDB(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
