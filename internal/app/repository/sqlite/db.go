package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"audio-transcriber/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT     NOT NULL,
	file_name      TEXT     NOT NULL,
	file_path      TEXT     NOT NULL,
	format         TEXT     NOT NULL,
	file_hash      TEXT     NOT NULL DEFAULT '',
	audio_duration REAL     NOT NULL DEFAULT 0,
	provider       TEXT     NOT NULL,
	model_name     TEXT     NOT NULL DEFAULT '',
	language       TEXT     NOT NULL DEFAULT '',
	output_path    TEXT     NOT NULL DEFAULT '',
	has_error      BOOLEAN  NOT NULL DEFAULT 0,
	error_message  TEXT     NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_run_id ON transcriptions(run_id);
`

type SQLiteDB struct {
	*repository.CommonDB
}

// NewSQLiteDB opens (creating if needed) the database file at dbFilePath and
// ensures the schema exists.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newWithDB(db)
}

func newWithDB(db *sql.DB) (*SQLiteDB, error) {
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &SQLiteDB{CommonDB: repository.NewCommonDB(db, "sqlite3")}, nil
}
