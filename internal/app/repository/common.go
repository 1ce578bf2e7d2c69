package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"audio-transcriber/internal/app/model"
)

// CommonDB provides shared database functionality
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
	}
}

const recordColumns = `id, run_id, file_name, file_path, format, file_hash, audio_duration,
	provider, model_name, language, output_path, has_error, error_message, created_at`

// RecordToDB inserts one history row. CreatedAt defaults to now.
func (c *CommonDB) RecordToDB(ctx context.Context, rec *model.TranscriptionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	params := make([]string, 13)
	for i := range params {
		params[i] = c.placeholders(i + 1)
	}

	query := fmt.Sprintf(
		`INSERT INTO transcriptions (
			run_id, file_name, file_path, format, file_hash, audio_duration,
			provider, model_name, language, output_path, has_error, error_message, created_at
		) VALUES (%s)`,
		strings.Join(params, ", "),
	)

	_, err := c.db.ExecContext(ctx, query,
		rec.RunID, rec.FileName, rec.FilePath, rec.Format, rec.FileHash, rec.AudioDuration,
		rec.Provider, rec.ModelName, rec.Language, rec.OutputPath, rec.HasError, rec.ErrorMessage,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

// GetByRun retrieves the records written by one run
func (c *CommonDB) GetByRun(ctx context.Context, runID string) ([]model.TranscriptionRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transcriptions WHERE run_id = %s ORDER BY id ASC`,
		recordColumns, c.placeholders(1),
	)
	return c.query(ctx, query, runID)
}

// GetAll retrieves all records, newest first
func (c *CommonDB) GetAll(ctx context.Context) ([]model.TranscriptionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcriptions ORDER BY id DESC`, recordColumns)
	return c.query(ctx, query)
}

// LastRunID returns the run of the most recent record
func (c *CommonDB) LastRunID(ctx context.Context) (string, error) {
	var runID string
	err := c.db.QueryRowContext(ctx, `SELECT run_id FROM transcriptions ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	return runID, nil
}

func (c *CommonDB) query(ctx context.Context, query string, args ...interface{}) ([]model.TranscriptionRecord, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]model.TranscriptionRecord, 0)
	for rows.Next() {
		var r model.TranscriptionRecord
		err := rows.Scan(
			&r.ID, &r.RunID, &r.FileName, &r.FilePath, &r.Format, &r.FileHash, &r.AudioDuration,
			&r.Provider, &r.ModelName, &r.Language, &r.OutputPath, &r.HasError, &r.ErrorMessage,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}
