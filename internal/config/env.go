package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI      string
	Gemini      string
	ElevenLabs  string
	HuggingFace string
}

// envPaths are searched in order; the first existing file wins.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads environment variables from the first .env file found.
// Variables already present in the process environment are not overridden.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}
	return "", nil
}

// GetAPIKeys retrieves and validates API keys from environment variables
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		ElevenLabs:  strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
		HuggingFace: strings.TrimSpace(os.Getenv("HUGGINGFACE_TOKEN")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			return nil, err
		}
	}
	if apiKeys.Gemini != "" {
		if err := ValidateAPIKey(apiKeys.Gemini, "Gemini"); err != nil {
			return nil, err
		}
	}
	if apiKeys.ElevenLabs != "" {
		if err := ValidateAPIKey(apiKeys.ElevenLabs, "ElevenLabs"); err != nil {
			return nil, err
		}
	}
	if apiKeys.HuggingFace != "" {
		if err := ValidateAPIKey(apiKeys.HuggingFace, "HuggingFace"); err != nil {
			return nil, err
		}
	}

	return apiKeys, nil
}

// Available lists the providers whose keys are set.
func (k *APIKeys) Available() []string {
	var available []string
	if k.OpenAI != "" {
		available = append(available, "OpenAI")
	}
	if k.Gemini != "" {
		available = append(available, "Gemini")
	}
	if k.ElevenLabs != "" {
		available = append(available, "ElevenLabs")
	}
	if k.HuggingFace != "" {
		available = append(available, "HuggingFace")
	}
	return available
}
