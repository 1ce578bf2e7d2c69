package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-transcriber/internal/app/model"
)

var _ TranscriptionDAO = (*CommonDB)(nil)
var _ TranscriptionDAO = NopDAO{}

func columns() []string {
	return []string{"id", "run_id", "file_name", "file_path", "format", "file_hash", "audio_duration",
		"provider", "model_name", "language", "output_path", "has_error", "error_message", "created_at"}
}

func TestCommonDB_Placeholders(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"postgres", "$3"},
		{"sqlite3", "?"},
		{"other", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCommonDB(nil, tt.driver).placeholders(3))
		})
	}
}

func TestCommonDB_RecordToDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dao := NewCommonDB(db, "postgres")
	rec := &model.TranscriptionRecord{
		RunID:         "run-1",
		FileName:      "talk.mp3",
		FilePath:      "audio/talk.mp3",
		Format:        "mp3",
		FileHash:      "abc",
		AudioDuration: 12.5,
		Provider:      "faster_whisper",
		ModelName:     "medium.en",
		Language:      "en",
		OutputPath:    "output/transcript/talk_transcript.txt",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transcriptions")).
		WithArgs("run-1", "talk.mp3", "audio/talk.mp3", "mp3", "abc", 12.5,
			"faster_whisper", "medium.en", "en", "output/transcript/talk_transcript.txt", false, "",
			sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, dao.RecordToDB(context.Background(), rec))
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommonDB_RecordToDB_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO transcriptions").WillReturnError(errors.New("disk full"))

	err = NewCommonDB(db, "sqlite3").RecordToDB(context.Background(), &model.TranscriptionRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
}

func TestCommonDB_GetByRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(columns()).
		AddRow(1, "run-1", "a.mp3", "audio/a.mp3", "mp3", "h1", 3.0, "openai", "whisper-1", "en", "out/a_transcript.txt", false, "", created).
		AddRow(2, "run-1", "c.wav", "audio/c.wav", "wav", "h2", 0.0, "openai", "whisper-1", "", "", true, "decode failed", created)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE run_id = $1 ORDER BY id ASC")).
		WithArgs("run-1").
		WillReturnRows(rows)

	got, err := NewCommonDB(db, "postgres").GetByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.mp3", got[0].FileName)
	assert.True(t, got[1].HasError)
	assert.Equal(t, "decode failed", got[1].ErrorMessage)
	assert.Equal(t, created, got[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommonDB_GetAll_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	_, err = NewCommonDB(db, "sqlite3").GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestCommonDB_LastRunID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(sqlmock.Sqlmock)
		want  string
	}{
		{
			name: "has_rows",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT run_id").WillReturnRows(sqlmock.NewRows([]string{"run_id"}).AddRow("run-9"))
			},
			want: "run-9",
		},
		{
			name: "empty_table",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT run_id").WillReturnError(sql.ErrNoRows)
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			got, err := NewCommonDB(db, "sqlite3").LastRunID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommonDB_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectClose()
	assert.NoError(t, NewCommonDB(db, "sqlite3").Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
