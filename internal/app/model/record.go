package model

import "time"

// FileStatus is the outcome of processing one AudioFile.
type FileStatus string

const (
	StatusSucceeded FileStatus = "succeeded"
	StatusFailed    FileStatus = "failed"
	StatusSkipped   FileStatus = "skipped"
)

// FileResult is the per-file entry of a batch report.
type FileResult struct {
	File       AudioFile
	Status     FileStatus
	OutputPath string
	Language   string
	// LanguageProbability is the model's confidence in Language.
	LanguageProbability float64
	AudioDuration       float64
	Elapsed             time.Duration
	CacheHit            bool
	Err                 error
}

// TranscriptionRecord is the history row persisted for each processed file.
type TranscriptionRecord struct {
	ID            int64
	RunID         string
	FileName      string
	FilePath      string
	Format        string
	FileHash      string
	AudioDuration float64
	Provider      string
	ModelName     string
	Language      string
	OutputPath    string
	HasError      bool
	ErrorMessage  string
	CreatedAt     time.Time
}
