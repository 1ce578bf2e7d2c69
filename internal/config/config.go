package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "audio-transcriber/internal/app/errors"
)

// DefaultConfigFile is read when no --config flag is given and the file exists.
const DefaultConfigFile = "transcriber.yaml"

// Layouts supported by the output writer.
const (
	LayoutPlain    = "plain"
	LayoutDetailed = "detailed"
)

// Config is the complete, typed runtime configuration.
type Config struct {
	InputDir     string          `yaml:"input_dir" validate:"required"`
	OutputDir    string          `yaml:"output_dir" validate:"required"`
	Layout       string          `yaml:"layout" validate:"oneof=plain detailed"`
	SkipExisting bool            `yaml:"skip_existing"`
	Workers      int             `yaml:"workers"`
	Engine       EngineConfig    `yaml:"engine"`
	Formatter    FormatterConfig `yaml:"formatter"`
	Diarize      DiarizeConfig   `yaml:"diarize"`
	History      HistoryConfig   `yaml:"history"`
	Cache        CacheConfig     `yaml:"cache"`
	Mirror       MirrorConfig    `yaml:"mirror"`
	Metrics      MetricsConfig   `yaml:"metrics"`
	Log          LogConfig       `yaml:"log"`
}

// EngineConfig selects the speech model and the options passed to it.
type EngineConfig struct {
	// Provider is the registered provider name, e.g. faster_whisper.
	Provider string `yaml:"provider" validate:"required"`
	// Model is the model size/variant (medium.en, large-v3, whisper-1...).
	Model string `yaml:"model"`
	// Language hint; empty lets the model detect it.
	Language    string        `yaml:"language"`
	Device      string        `yaml:"device" validate:"oneof=cpu cuda auto"`
	ComputeType string        `yaml:"compute_type" validate:"omitempty,oneof=int8 int8_float16 int16 float16 float32"`
	BeamSize    int           `yaml:"beam_size" validate:"gte=1,lte=20"`
	VADFilter   bool          `yaml:"vad_filter"`
	Prompt      string        `yaml:"prompt"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=1"`
	Timeout     time.Duration `yaml:"timeout"`

	FasterWhisper FasterWhisperConfig `yaml:"faster_whisper"`
	WhisperCpp    WhisperCppConfig    `yaml:"whisper_cpp"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	WhisperServer WhisperServerConfig `yaml:"whisper_server"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	ElevenLabs    ElevenLabsConfig    `yaml:"elevenlabs"`
}

type FasterWhisperConfig struct {
	Python string `yaml:"python"`
}

type WhisperCppConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Threads    int    `yaml:"threads" validate:"gte=0"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type WhisperServerConfig struct {
	BaseURL       string `yaml:"base_url"`
	InferencePath string `yaml:"inference_path"`
	LoadPath      string `yaml:"load_path"`
	// LoadModel asks the server to swap to Engine.Model before the batch.
	LoadModel bool `yaml:"load_model"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// FormatterConfig controls paragraph grouping.
type FormatterConfig struct {
	MaxSentences int     `yaml:"max_sentences" validate:"gte=1"`
	GapSeconds   float64 `yaml:"gap_seconds" validate:"gte=0"`
}

type DiarizeConfig struct {
	Method           string  `yaml:"method" validate:"oneof=pyannote silence"`
	HuggingFaceToken string  `yaml:"huggingface_token"`
	Python           string  `yaml:"python"`
	GapSeconds       float64 `yaml:"gap_seconds" validate:"gte=0"`
}

type HistoryConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres none"`
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db" validate:"gte=0"`
	TTL       time.Duration `yaml:"ttl"`
}

type MirrorConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket" validate:"required_with=Endpoint"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing is overridden: read ./audio,
// write ./output/transcript, faster-whisper medium.en on CPU.
func Default() *Config {
	return &Config{
		InputDir:  "audio",
		OutputDir: "output/transcript",
		Layout:    LayoutPlain,
		Workers:   1,
		Engine: EngineConfig{
			Provider:  "faster_whisper",
			Device:    "cpu",
			BeamSize:  5,
			VADFilter: true,
			Timeout:   2 * time.Hour,
			FasterWhisper: FasterWhisperConfig{
				Python: "python3",
			},
			WhisperServer: WhisperServerConfig{
				InferencePath: "/inference",
				LoadPath:      "/load",
			},
		},
		Formatter: FormatterConfig{
			MaxSentences: 5,
			GapSeconds:   2.0,
		},
		Diarize: DiarizeConfig{
			Method:     "pyannote",
			Python:     "python3",
			GapSeconds: 1.5,
		},
		History: HistoryConfig{
			Driver: "sqlite",
			DSN:    "data/transcription.db",
		},
		Cache: CacheConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path and the
// environment. An empty path reads DefaultConfigFile when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, apperrors.Kindf(apperrors.ErrInvalidConfig, err, "failed to parse config %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, apperrors.Kindf(apperrors.ErrInvalidConfig, err, "failed to read config %s", path)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills secrets and paths left empty by the file from the environment.
func (c *Config) applyEnv() {
	setIfEmpty(&c.Engine.OpenAI.APIKey, os.Getenv("OPENAI_API_KEY"))
	setIfEmpty(&c.Engine.OpenAI.BaseURL, os.Getenv("OPENAI_BASE_URL"))
	setIfEmpty(&c.Engine.Gemini.APIKey, os.Getenv("GEMINI_API_KEY"))
	setIfEmpty(&c.Engine.ElevenLabs.APIKey, os.Getenv("ELEVENLABS_API_KEY"))
	setIfEmpty(&c.Engine.WhisperCpp.BinaryPath, os.Getenv("WHISPER_CPP_BINARY"))
	setIfEmpty(&c.Engine.WhisperCpp.ModelPath, os.Getenv("WHISPER_CPP_MODEL"))
	setIfEmpty(&c.Engine.WhisperServer.BaseURL, os.Getenv("WHISPER_SERVER_URL"))
	setIfEmpty(&c.Diarize.HuggingFaceToken, os.Getenv("HUGGINGFACE_TOKEN"))
	setIfEmpty(&c.Mirror.AccessKey, os.Getenv("MINIO_ACCESS_KEY"))
	setIfEmpty(&c.Mirror.SecretKey, os.Getenv("MINIO_SECRET_KEY"))
	if c.History.Driver == "postgres" {
		setIfEmpty(&c.History.DSN, os.Getenv("DATABASE_URL"))
	}
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = strings.TrimSpace(value)
	}
}

// Resolve fills values derived from other fields and validates the result.
// It must run after command-line overrides are applied.
func (c *Config) Resolve() error {
	if c.Engine.Model == "" {
		c.Engine.Model = DefaultModel(c.Engine.Provider)
	}
	if c.Engine.ComputeType == "" {
		c.Engine.ComputeType = DefaultComputeType(c.Engine.Device)
	}
	return c.Validate()
}

// Validate checks struct tags and range constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.InvalidField(fe.Namespace(), describe(fe))
		}
		return apperrors.Kindf(apperrors.ErrInvalidConfig, err, "configuration")
	}
	if err := ValidateConcurrency(c.Workers, "workers"); err != nil {
		return apperrors.InvalidField("Config.Workers", err.Error())
	}
	if err := ValidateTimeout(c.Engine.Timeout, "engine"); err != nil {
		return apperrors.InvalidField("Config.Engine.Timeout", err.Error())
	}
	return nil
}

var validate = validator.New()

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gte", "lte":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	default:
		return "is invalid"
	}
}

// DefaultModel returns the model used by provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "faster_whisper":
		return "medium.en"
	case "openai":
		return "whisper-1"
	case "gemini":
		return "gemini-2.0-flash"
	case "elevenlabs":
		return "scribe_v1"
	default:
		return ""
	}
}

// DefaultComputeType picks float16 on GPU and int8 on CPU.
func DefaultComputeType(device string) string {
	if device == "cuda" {
		return "float16"
	}
	return "int8"
}
