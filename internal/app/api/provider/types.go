package provider

import (
	"context"
	"errors"
	"fmt"

	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/model"
)

// ProviderType defines the type of transcription provider
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// ProviderInfo contains metadata about a transcription provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`

	SupportedFormats []model.AudioFormat `json:"supported_formats"`

	SupportsTimestamps        bool `json:"supports_timestamps"`
	SupportsLanguageDetection bool `json:"supports_language_detection"`

	RequiresInternet bool `json:"requires_internet"`
	RequiresAPIKey   bool `json:"requires_api_key"`
	RequiresBinary   bool `json:"requires_binary"`

	DefaultModel    string   `json:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty"`
}

// Error codes carried by TranscriptionError.
const (
	CodeInvalidConfig   = "invalid_config"
	CodeUnavailable     = "unavailable"
	CodeFileNotFound    = "file_not_found"
	CodeAudioConversion = "audio_conversion_error"
	CodeModelFailure    = "model_failure"
	CodeBadResponse     = "bad_response"
	CodeAPIError        = "api_error"
	CodeCanceled        = "canceled"
)

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
	Cause       error    `json:"-"`
}

func (e *TranscriptionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// Is makes every TranscriptionError match apperrors.ErrTranscription.
func (e *TranscriptionError) Is(target error) bool {
	return target == error(apperrors.ErrTranscription)
}

// NewError builds a TranscriptionError for providerName.
func NewError(providerName, code string, cause error, format string, args ...interface{}) *TranscriptionError {
	return &TranscriptionError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Provider: providerName,
		Cause:    cause,
	}
}

// AsTranscriptionError normalizes err so callers can rely on errors.Is(err,
// apperrors.ErrTranscription). Context cancellation keeps its cause.
func AsTranscriptionError(providerName string, err error) error {
	if err == nil {
		return nil
	}
	var te *TranscriptionError
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(providerName, CodeCanceled, err, "transcription interrupted")
	}
	return NewError(providerName, CodeModelFailure, err, "transcription failed")
}
