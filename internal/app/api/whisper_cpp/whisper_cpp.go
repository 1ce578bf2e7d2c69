package whisper_cpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/api"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// ProviderName is the registry key of this provider.
const ProviderName = "whisper_cpp"

// AudioConverter produces the 16 kHz WAV input whisper.cpp requires.
type AudioConverter interface {
	ConvertTo16kHzWav(ctx context.Context, input string, outDir string) (string, error)
}

// LocalTranscriber implements local transcription, using local binary commands.
type LocalTranscriber struct {
	cfg       config.EngineConfig
	converter AudioConverter
	logger    *zap.Logger
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(cfg config.EngineConfig, converter AudioConverter, logger *zap.Logger) *LocalTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalTranscriber{cfg: cfg, converter: converter, logger: logger}
}

func (lt *LocalTranscriber) Name() string { return ProviderName }

func (lt *LocalTranscriber) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                      ProviderName,
		DisplayName:               "Whisper.cpp (Local)",
		Type:                      provider.ProviderTypeLocal,
		SupportedFormats:          model.SupportedFormats,
		SupportsTimestamps:        true,
		SupportsLanguageDetection: true,
		RequiresBinary:            true,
		DefaultModel:              "ggml-medium.en.bin",
		AvailableModels: []string{
			"ggml-tiny.bin", "ggml-base.bin", "ggml-small.bin",
			"ggml-medium.bin", "ggml-medium.en.bin", "ggml-large-v2.bin", "ggml-large-v3.bin",
		},
	}
}

// ValidateConfiguration validates the provider configuration
func (lt *LocalTranscriber) ValidateConfiguration() error {
	if lt.cfg.WhisperCpp.BinaryPath == "" {
		return provider.NewError(ProviderName, provider.CodeInvalidConfig, nil,
			"binary path is required (engine.whisper_cpp.binary_path or WHISPER_CPP_BINARY)")
	}
	if lt.cfg.WhisperCpp.ModelPath == "" {
		return provider.NewError(ProviderName, provider.CodeInvalidConfig, nil,
			"model path is required (engine.whisper_cpp.model_path or WHISPER_CPP_MODEL)")
	}
	return nil
}

// Open checks the binary and model and creates the session scratch directory.
func (lt *LocalTranscriber) Open(ctx context.Context) (api.Transcriber, error) {
	binary, err := exec.LookPath(lt.cfg.WhisperCpp.BinaryPath)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err,
			"whisper.cpp binary not found at %s", lt.cfg.WhisperCpp.BinaryPath)
	}
	if _, err := os.Stat(lt.cfg.WhisperCpp.ModelPath); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err,
			"whisper model not found at %s", lt.cfg.WhisperCpp.ModelPath)
	}

	dir, err := os.MkdirTemp("", "whisper-cpp-")
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to create temp directory")
	}

	lt.logger.Info("whisper.cpp ready",
		zap.String("binary", binary),
		zap.String("model", lt.cfg.WhisperCpp.ModelPath))

	return &session{LocalTranscriber: lt, binary: binary, dir: dir}, nil
}

type session struct {
	*LocalTranscriber
	binary string
	dir    string
}

// Transcript converts the file, runs whisper.cpp with JSON output and parses it.
func (s *session) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	if _, err := os.Stat(file.Path); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeFileNotFound, err, "cannot read %s", file.Name)
	}

	work, err := os.MkdirTemp(s.dir, "job-")
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to create job directory")
	}
	defer os.RemoveAll(work)

	wav, err := s.converter.ConvertTo16kHzWav(ctx, file.Path, work)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeAudioConversion, err, "error converting %s", file.Name)
	}

	outputBase := filepath.Join(work, "transcript")
	args := s.buildArgs(wav, outputBase)

	command := exec.CommandContext(ctx, s.binary, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	s.logger.Debug("running whisper.cpp",
		zap.String("file", file.Name),
		zap.String("command", s.binary+" "+strings.Join(args, " ")))

	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, provider.AsTranscriptionError(ProviderName, ctx.Err())
		}
		return nil, provider.NewError(ProviderName, provider.CodeModelFailure, err,
			"command execution error on %s, stderr: %s", file.Name, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outputBase + ".json")
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeBadResponse, err, "failed to read output file")
	}

	tr, err := parseOutput(data)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeBadResponse, err, "failed to parse output for %s", file.Name)
	}
	tr.Model = filepath.Base(s.cfg.WhisperCpp.ModelPath)
	return tr, nil
}

func (s *session) buildArgs(wav, outputBase string) []string {
	language := s.cfg.Language
	if language == "" {
		language = "auto"
	}

	args := []string{
		"-m", s.cfg.WhisperCpp.ModelPath,
		"-l", language,
		"-bs", strconv.Itoa(s.cfg.BeamSize),
		"-np",
		"-oj",
		"-of", outputBase,
	}
	if s.cfg.WhisperCpp.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(s.cfg.WhisperCpp.Threads))
	}
	if s.cfg.Prompt != "" {
		args = append(args, "--prompt", s.cfg.Prompt)
	}
	if s.cfg.Temperature > 0 {
		args = append(args, "-tp", strconv.FormatFloat(float64(s.cfg.Temperature), 'f', 2, 32))
	}
	return append(args, "-f", wav)
}

func (s *session) Close() error {
	return os.RemoveAll(s.dir)
}

type cppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseOutput converts whisper.cpp -oj output. Offsets are milliseconds.
func parseOutput(data []byte) (*model.Transcript, error) {
	var out cppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid whisper.cpp json: %w", err)
	}

	tr := &model.Transcript{Language: out.Result.Language}
	for _, seg := range out.Transcription {
		tr.Segments = append(tr.Segments, model.Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return tr, nil
}
