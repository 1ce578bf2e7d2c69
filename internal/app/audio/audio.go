package audio

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

	"audio-transcriber/internal/app/model"
)

// Runner executes an external tool and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s error: %v, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Tool wraps ffprobe and ffmpeg.
type Tool struct {
	runner  Runner
	ffprobe string
	ffmpeg  string
	logger  *zap.Logger
}

// NewTool returns a Tool that runs the binaries found on PATH.
func NewTool(logger *zap.Logger) *Tool {
	return NewToolWithRunner(execRunner{}, logger)
}

// NewToolWithRunner is NewTool with a custom command runner.
func NewToolWithRunner(runner Runner, logger *zap.Logger) *Tool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{runner: runner, ffprobe: "ffprobe", ffmpeg: "ffmpeg", logger: logger}
}

// Duration returns the length of the audio file in seconds.
func (t *Tool) Duration(ctx context.Context, path string) (float64, error) {
	out, err := t.runner.Output(ctx, t.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return 0, err
	}
	return parseDuration(out)
}

func parseDuration(out []byte) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return d, nil
}

// Is16kHzWav reports whether path already holds 16 kHz 16-bit PCM audio.
func (t *Tool) Is16kHzWav(ctx context.Context, path string) (bool, error) {
	out, err := t.runner.Output(ctx, t.ffprobe, "-v", "quiet", "-print_format", "json", "-show_streams", path)
	if err != nil {
		return false, err
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(out, &probeOutput); err != nil {
		return false, err
	}

	for _, stream := range probeOutput.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" && stream.SampleRate == 16000 {
			return true, nil
		}
	}
	return false, nil
}

// ConvertTo16kHzWav writes a 16 kHz mono PCM copy of input into outDir and
// returns its path. Inputs that already qualify are returned unchanged.
func (t *Tool) ConvertTo16kHzWav(ctx context.Context, input string, outDir string) (string, error) {
	if ok, err := t.Is16kHzWav(ctx, input); err == nil && ok {
		return input, nil
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	output := filepath.Join(outDir, base+"_16khz.wav")
	if _, err := os.Stat(output); err == nil {
		t.logger.Debug("16kHz wav already exists", zap.String("path", output))
		return output, nil
	}

	t.logger.Debug("converting to 16kHz wav", zap.String("input", input))
	if _, err := t.runner.Output(ctx, t.ffmpeg,
		"-nostdin", "-y",
		"-i", input,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		output); err != nil {
		return "", err
	}
	return output, nil
}
