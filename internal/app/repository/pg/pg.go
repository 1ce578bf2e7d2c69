package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"audio-transcriber/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id             BIGSERIAL PRIMARY KEY,
	run_id         TEXT             NOT NULL,
	file_name      TEXT             NOT NULL,
	file_path      TEXT             NOT NULL,
	format         TEXT             NOT NULL,
	file_hash      TEXT             NOT NULL DEFAULT '',
	audio_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
	provider       TEXT             NOT NULL,
	model_name     TEXT             NOT NULL DEFAULT '',
	language       TEXT             NOT NULL DEFAULT '',
	output_path    TEXT             NOT NULL DEFAULT '',
	has_error      BOOLEAN          NOT NULL DEFAULT FALSE,
	error_message  TEXT             NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ      NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_run_id ON transcriptions(run_id);
`

type PostgresDB struct {
	*repository.CommonDB
}

// NewPostgresDB connects with connectionString and ensures the schema exists.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	return newWithDB(db)
}

func newWithDB(db *sql.DB) (*PostgresDB, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, "postgres")}, nil
}
