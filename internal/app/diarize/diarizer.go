package diarize

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// Diarizer produces speaker turns for one audio file.
type Diarizer interface {
	Turns(ctx context.Context, audioPath string, segments []model.Segment) ([]Turn, error)
}

// New returns the diarizer selected by cfg.Method.
func New(cfg config.DiarizeConfig, logger *zap.Logger) (Diarizer, error) {
	switch cfg.Method {
	case "silence":
		return Silence{Gap: cfg.GapSeconds}, nil
	case "pyannote", "":
		if strings.TrimSpace(cfg.HuggingFaceToken) == "" {
			return nil, fmt.Errorf("pyannote diarization needs a Hugging Face token (set HUGGINGFACE_TOKEN)")
		}
		return NewPyannote(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown diarization method %q", cfg.Method)
	}
}

// Silence alternates between two speakers whenever the pause between
// consecutive segments exceeds Gap seconds.
type Silence struct {
	Gap float64
}

func (s Silence) Turns(_ context.Context, _ string, segments []model.Segment) ([]Turn, error) {
	turns := make([]Turn, 0, len(segments))
	speaker := 0
	for i, seg := range segments {
		if i > 0 && seg.Start-segments[i-1].End > s.Gap {
			speaker = 1 - speaker
		}
		turns = append(turns, Turn{Start: seg.Start, End: seg.End, Speaker: fmt.Sprintf("SPEAKER_%02d", speaker)})
	}
	return turns, nil
}

//go:embed pyannote.py
var pyannoteScript []byte

var execCommand = exec.CommandContext

// Pyannote runs the pyannote speaker-diarization pipeline in a Python subprocess.
type Pyannote struct {
	python string
	token  string
	logger *zap.Logger
}

func NewPyannote(cfg config.DiarizeConfig, logger *zap.Logger) *Pyannote {
	if logger == nil {
		logger = zap.NewNop()
	}
	python := cfg.Python
	if python == "" {
		python = "python3"
	}
	return &Pyannote{python: python, token: cfg.HuggingFaceToken, logger: logger}
}

type pyannoteResult struct {
	Turns []Turn `json:"turns"`
	Error string `json:"error"`
}

func (p *Pyannote) Turns(ctx context.Context, audioPath string, _ []model.Segment) ([]Turn, error) {
	dir, err := os.MkdirTemp("", "pyannote-")
	if err != nil {
		return nil, fmt.Errorf("failed to create script directory: %w", err)
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, "pyannote.py")
	if err := os.WriteFile(script, pyannoteScript, 0o755); err != nil {
		return nil, fmt.Errorf("failed to write script: %w", err)
	}

	cmd := execCommand(ctx, p.python, "-u", script, audioPath)
	cmd.Env = append(os.Environ(), "HUGGINGFACE_TOKEN="+p.token)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Info("running speaker diarization", zap.String("audio", audioPath))
	runErr := cmd.Run()

	var res pyannoteResult
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &res); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("diarization failed: %w: %s", runErr, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("failed to parse diarization output: %w", err)
	}
	if res.Error != "" {
		return nil, fmt.Errorf("diarization failed: %s", res.Error)
	}
	if runErr != nil {
		return nil, fmt.Errorf("diarization failed: %w", runErr)
	}
	return res.Turns, nil
}
