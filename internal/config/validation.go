package config

import (
	"fmt"
	"strings"
	"time"
)

// Upper bounds for the range checks below.
const (
	maxTimeout = 6 * time.Hour
	maxWorkers = 32
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	switch {
	case timeout <= 0:
		return fmt.Errorf("%s timeout must be positive", name)
	case timeout > maxTimeout:
		return fmt.Errorf("%s timeout too large (max %s)", name, maxTimeout)
	}
	return nil
}

// ValidateConcurrency validates concurrency setting
func ValidateConcurrency(concurrency int, name string) error {
	switch {
	case concurrency <= 0:
		return fmt.Errorf("%s concurrency must be positive", name)
	case concurrency > maxWorkers:
		return fmt.Errorf("%s concurrency too high (max %d)", name, maxWorkers)
	}
	return nil
}

type keyFormat struct {
	prefix string
	minLen int
}

// keyFormats lists the known credential shapes by provider label.
var keyFormats = map[string]keyFormat{
	"OpenAI":      {prefix: "sk-", minLen: 20},
	"Gemini":      {prefix: "AIza", minLen: 30},
	"ElevenLabs":  {prefix: "sk_"},
	"HuggingFace": {prefix: "hf_"},
}

// ValidateAPIKey checks that apiKey is set and looks like a keyType credential.
// Unknown key types only need to be non-empty.
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}
	format, ok := keyFormats[keyType]
	if !ok {
		return nil
	}
	if !strings.HasPrefix(apiKey, format.prefix) {
		return fmt.Errorf("invalid %s API key format: must start with '%s'", keyType, format.prefix)
	}
	if len(apiKey) < format.minLen {
		return fmt.Errorf("invalid %s API key format: too short", keyType)
	}
	return nil
}

// ValidateURL requires an http or https URL.
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}
	return nil
}
