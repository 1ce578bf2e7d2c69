package faster_whisper

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

var execCommand = exec.Command

const closeGrace = 5 * time.Second

type request struct {
	Audio         string  `json:"audio"`
	Language      string  `json:"language,omitempty"`
	BeamSize      int     `json:"beam_size"`
	VADFilter     bool    `json:"vad_filter"`
	InitialPrompt string  `json:"initial_prompt,omitempty"`
	Temperature   float32 `json:"temperature,omitempty"`
}

type response struct {
	Ready               bool            `json:"ready,omitempty"`
	Error               string          `json:"error,omitempty"`
	Language            string          `json:"language,omitempty"`
	LanguageProbability float64         `json:"language_probability,omitempty"`
	Duration            float64         `json:"duration,omitempty"`
	Segments            []model.Segment `json:"segments"`
}

// worker is one running Python process with the model loaded.
type worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *tailBuffer
	dir    string

	// broken is set once the request/reply pairing is lost.
	broken   error
	stopOnce sync.Once
	stopErr  error
}

// startWorker launches the worker and blocks until the model is loaded.
func startWorker(ctx context.Context, cfg config.EngineConfig, logger *zap.Logger) (*worker, error) {
	dir, err := os.MkdirTemp("", "faster-whisper-")
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to create worker directory")
	}
	script := filepath.Join(dir, "worker.py")
	if err := os.WriteFile(script, workerScript, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to write worker script")
	}

	cmd := execCommand(cfg.FasterWhisper.Python, "-u", script,
		"--model", cfg.Model,
		"--device", cfg.Device,
		"--compute-type", cfg.ComputeType)

	w := &worker{cmd: cmd, dir: dir, stderr: newTailBuffer(4096)}
	cmd.Stderr = w.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		w.cleanup()
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to open worker stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		w.cleanup()
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to open worker stdout")
	}
	w.stdin = stdin
	w.stdout = bufio.NewReaderSize(stdout, 1<<20)

	logger.Info("starting faster-whisper worker",
		zap.String("model", cfg.Model),
		zap.String("device", cfg.Device),
		zap.String("compute_type", cfg.ComputeType))

	if err := cmd.Start(); err != nil {
		w.cleanup()
		te := provider.NewError(ProviderName, provider.CodeUnavailable, err, "failed to start %s", cfg.FasterWhisper.Python)
		te.Suggestions = []string{"install Python 3 and run: pip install faster-whisper"}
		return nil, te
	}

	var ready response
	if err := w.readResponse(ctx, &ready); err != nil {
		_ = w.stop()
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "worker did not start")
	}
	if ready.Error != "" || !ready.Ready {
		_ = w.stop()
		te := provider.NewError(ProviderName, provider.CodeUnavailable, nil, "model %s could not be loaded: %s", cfg.Model, ready.Error)
		te.Suggestions = []string{"pip install faster-whisper", "check --model and --device"}
		return nil, te
	}

	logger.Info("faster-whisper model loaded", zap.String("model", cfg.Model))
	return w, nil
}

// readResponse reads one JSON line. On cancellation the worker is killed and
// marked broken, since the pending reply can no longer be paired.
func (w *worker) readResponse(ctx context.Context, v *response) error {
	type result struct {
		line []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := w.stdout.ReadBytes('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		w.kill()
		<-ch
		w.broken = ctx.Err()
		return ctx.Err()
	case r := <-ch:
		if r.err != nil {
			w.broken = r.err
			if errors.Is(r.err, io.EOF) {
				return fmt.Errorf("worker exited: %s", w.stderr.String())
			}
			return r.err
		}
		if err := json.Unmarshal(r.line, v); err != nil {
			return fmt.Errorf("malformed worker output %q: %w", strings.TrimSpace(string(r.line)), err)
		}
		return nil
	}
}

func (w *worker) kill() {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

// stop closes stdin, waits for the worker to exit and removes its directory.
func (w *worker) stop() error {
	w.stopOnce.Do(func() {
		if w.stdin != nil {
			_ = w.stdin.Close()
		}
		if w.cmd.Process != nil {
			done := make(chan error, 1)
			go func() { done <- w.cmd.Wait() }()
			select {
			case err := <-done:
				var exitErr *exec.ExitError
				if err != nil && !errors.As(err, &exitErr) {
					w.stopErr = err
				}
			case <-time.After(closeGrace):
				w.kill()
				<-done
			}
		}
		w.cleanup()
	})
	return w.stopErr
}

func (w *worker) cleanup() {
	if w.dir != "" {
		_ = os.RemoveAll(w.dir)
	}
}

// session serializes calls onto the current worker, since a worker has a
// single stdin/stdout pair. A worker lost to one file (crash or per-file
// deadline) is replaced before the next file; a canceled caller gets no
// restart.
type session struct {
	cfg    config.EngineConfig
	logger *zap.Logger
	start  func(ctx context.Context) (*worker, error)

	mu       sync.Mutex
	w        *worker
	restarts int
	closed   bool
}

func (s *session) Transcript(ctx context.Context, file model.AudioFile) (*model.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, nil, "worker is closed")
	}
	if _, err := os.Stat(file.Path); err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeFileNotFound, err, "cannot read %s", file.Name)
	}
	if s.w.broken != nil {
		if err := s.restart(ctx); err != nil {
			return nil, err
		}
	}

	req := request{
		Audio:         file.Path,
		Language:      s.cfg.Language,
		BeamSize:      s.cfg.BeamSize,
		VADFilter:     s.cfg.VADFilter,
		InitialPrompt: s.cfg.Prompt,
		Temperature:   s.cfg.Temperature,
	}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, provider.NewError(ProviderName, provider.CodeModelFailure, err, "encode request")
	}
	if _, err := s.w.stdin.Write(append(line, '\n')); err != nil {
		s.w.broken = err
		return nil, provider.NewError(ProviderName, provider.CodeUnavailable, err, "worker stdin closed: %s", s.w.stderr.String())
	}

	var resp response
	if err := s.w.readResponse(ctx, &resp); err != nil {
		return nil, provider.AsTranscriptionError(ProviderName, err)
	}
	if resp.Error != "" {
		return nil, provider.NewError(ProviderName, provider.CodeModelFailure, nil, "%s: %s", file.Name, resp.Error)
	}

	s.logger.Debug("faster-whisper transcribed file",
		zap.String("file", file.Name),
		zap.String("language", resp.Language),
		zap.Float64("language_probability", resp.LanguageProbability),
		zap.Int("segments", len(resp.Segments)))

	return &model.Transcript{
		Segments:            resp.Segments,
		Language:            resp.Language,
		LanguageProbability: resp.LanguageProbability,
		Duration:            resp.Duration,
		Model:               s.cfg.Model,
	}, nil
}

// restart replaces a broken worker. It is skipped when ctx is already done so
// an interrupted batch does not reload the model.
func (s *session) restart(ctx context.Context) error {
	cause := s.w.broken
	if err := ctx.Err(); err != nil {
		return provider.NewError(ProviderName, provider.CodeCanceled, err, "worker is not running: %v", cause)
	}

	s.logger.Warn("restarting faster-whisper worker", zap.Error(cause))
	_ = s.w.stop()

	w, err := s.start(ctx)
	if err != nil {
		return provider.NewError(ProviderName, provider.CodeUnavailable, err, "worker restart failed")
	}
	s.w = w
	s.restarts++
	return nil
}

// Close stops the worker and removes its script directory. It is safe to
// call more than once.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.w.stop()
	s.logger.Debug("faster-whisper worker stopped", zap.Int("restarts", s.restarts))
	return err
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
