package converter

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"audio-transcriber/internal/app/api"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/app/cache"
	"audio-transcriber/internal/app/formatter"
	"audio-transcriber/internal/app/metrics"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/app/output"
	"audio-transcriber/internal/app/repository"
	"audio-transcriber/internal/app/storage"
	"audio-transcriber/internal/app/util/files"
	"audio-transcriber/internal/app/utils"
)

// DurationProber reports the length of an audio file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Options controls one batch run.
type Options struct {
	InputDir     string
	OutputDir    string
	SkipExisting bool
	Workers      int
	Progress     bool
	// ProgressWriter defaults to stderr.
	ProgressWriter io.Writer
	// MetricsTextfile, when set, receives the run's metrics.
	MetricsTextfile string
}

type Converter struct {
	provider  provider.TranscriptionProvider
	formatter *formatter.Formatter
	writer    *output.Writer
	prober    DurationProber
	db        repository.TranscriptionDAO
	cache     cache.TranscriptCache
	mirror    storage.Mirror
	metrics   *metrics.Recorder
	logger    *zap.Logger

	decoding cache.Decoding
	timeout  time.Duration
}

// NewConverter wires the pipeline. mirror may be nil.
func NewConverter(
	p provider.TranscriptionProvider,
	f *formatter.Formatter,
	w *output.Writer,
	prober DurationProber,
	db repository.TranscriptionDAO,
	c cache.TranscriptCache,
	mirror storage.Mirror,
	m *metrics.Recorder,
	engine EngineSettings,
	logger *zap.Logger,
) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if db == nil {
		db = repository.NopDAO{}
	}
	if c == nil {
		c = cache.NopCache{}
	}
	if m == nil {
		m = metrics.NewRecorder()
	}
	return &Converter{
		provider:  p,
		formatter: f,
		writer:    w,
		prober:    prober,
		db:        db,
		cache:     c,
		mirror:    mirror,
		metrics:   m,
		logger:    logger,
		decoding: cache.Decoding{
			Model:       engine.Model,
			Language:    engine.Language,
			Device:      engine.Device,
			ComputeType: engine.ComputeType,
			BeamSize:    engine.BeamSize,
			VADFilter:   engine.VADFilter,
			Prompt:      engine.Prompt,
			Temperature: engine.Temperature,
		},
		timeout: engine.Timeout,
	}
}

// EngineSettings are the engine values that identify a transcript in the
// cache and history.
type EngineSettings struct {
	Model       string
	Language    string
	Device      string
	ComputeType string
	BeamSize    int
	VADFilter   bool
	Prompt      string
	Temperature float32
	// Timeout bounds a single model call; zero means no limit.
	Timeout time.Duration
}

// Run transcribes every supported file in opts.InputDir. A missing input
// directory fails before the model is opened. Per-file failures are recorded in
// the report and do not stop the batch.
func (c *Converter) Run(ctx context.Context, opts Options) (*Report, error) {
	audioFiles, err := files.CollectAudioFiles(opts.InputDir, c.logger)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    uuid.NewString(),
		Provider: c.provider.Name(),
		Started:  time.Now(),
		Results:  make([]model.FileResult, len(audioFiles)),
	}
	defer func() { report.Elapsed = time.Since(report.Started) }()

	plan := output.PlanOutputs(opts.OutputDir, audioFiles)
	var pending []int
	for i, af := range audioFiles {
		report.Results[i] = model.FileResult{File: af, OutputPath: plan[af.Path]}
		if opts.SkipExisting && files.Exists(plan[af.Path]) {
			report.Results[i].Status = model.StatusSkipped
			c.logger.Info("skipping already transcribed file", zap.String("file", af.Name))
			c.metrics.Observe(report.Provider, report.Results[i])
			continue
		}
		pending = append(pending, i)
	}

	c.logger.Info("collected audio files",
		zap.String("input_dir", opts.InputDir),
		zap.Int("found", len(audioFiles)),
		zap.Int("to_transcribe", len(pending)))

	if len(pending) == 0 {
		c.writeMetrics(opts.MetricsTextfile)
		return report, nil
	}

	tr, err := c.provider.Open(ctx)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := tr.Close(); err != nil {
			c.logger.Warn("failed to close transcriber", zap.Error(err))
		}
	}()

	progress := NewProgressManager(ProgressConfig{Enabled: opts.Progress, Writer: opts.ProgressWriter})
	bar := progress.CreateBar(len(pending), "Transcribing")

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	run := func(i int) {
		defer func() { bar.Done(report.Results[i]) }()
		if err := ctx.Err(); err != nil {
			report.Results[i].Status = model.StatusFailed
			report.Results[i].Err = err
			return
		}
		report.Results[i] = c.processFile(ctx, tr, report, report.Results[i])
	}

	if workers == 1 {
		for _, i := range pending {
			run(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)
		for _, i := range pending {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				run(i)
			}(i)
		}
		wg.Wait()
	}

	bar.Complete()
	progress.Wait()
	c.writeMetrics(opts.MetricsTextfile)
	return report, ctx.Err()
}

func (c *Converter) processFile(ctx context.Context, tr api.Transcriber, report *Report, res model.FileResult) model.FileResult {
	af := res.File
	start := time.Now()
	logger := c.logger.With(zap.String("file", af.Name))
	logger.Info("processing file")

	hash, err := utils.HashFile(af.Path)
	if err != nil {
		logger.Warn("failed to hash audio file", zap.Error(err))
	}

	transcript, err := c.transcribe(ctx, tr, af, hash, &res, logger)
	if err == nil {
		doc := c.formatter.Format(transcript)
		doc.Source = af
		err = c.writer.Write(doc, res.OutputPath)
	}

	res.Elapsed = time.Since(start)
	if transcript != nil {
		res.Language = transcript.Language
		res.LanguageProbability = transcript.LanguageProbability
		res.AudioDuration = transcript.Duration
	}
	if err != nil {
		res.Status = model.StatusFailed
		res.Err = err
		logger.Error("transcription failed", zap.Error(err))
	} else {
		res.Status = model.StatusSucceeded
		logger.Info("transcript written",
			zap.String("output", res.OutputPath),
			zap.String("language", res.Language),
			zap.Float64("language_probability", res.LanguageProbability),
			zap.Duration("elapsed", res.Elapsed),
			zap.Bool("cache_hit", res.CacheHit))
		c.mirrorOutput(ctx, res.OutputPath, logger)
	}

	c.record(ctx, report.RunID, report.Provider, hash, transcript, res, logger)
	c.metrics.Observe(report.Provider, res)
	return res
}

func (c *Converter) transcribe(ctx context.Context, tr api.Transcriber, af model.AudioFile, hash string, res *model.FileResult, logger *zap.Logger) (*model.Transcript, error) {
	key := ""
	if hash != "" {
		key = cache.Key(c.provider.Name(), c.decoding, hash)
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("transcript cache lookup failed", zap.Error(err))
		}
		if ok {
			res.CacheHit = true
			return cached, nil
		}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	transcript, err := tr.Transcript(callCtx, af)
	if err != nil {
		return nil, err
	}
	if transcript.Model == "" {
		transcript.Model = c.decoding.Model
	}
	if transcript.Duration == 0 && c.prober != nil {
		if d, err := c.prober.Duration(ctx, af.Path); err != nil {
			logger.Warn("failed to probe audio duration", zap.Error(err))
		} else {
			transcript.Duration = d
		}
	}

	if key != "" {
		if err := c.cache.Put(ctx, key, transcript); err != nil {
			logger.Warn("failed to cache transcript", zap.Error(err))
		}
	}
	return transcript, nil
}

func (c *Converter) mirrorOutput(ctx context.Context, path string, logger *zap.Logger) {
	if c.mirror == nil {
		return
	}
	key, err := c.mirror.Upload(ctx, path)
	if err != nil {
		logger.Warn("failed to mirror transcript", zap.Error(err))
		return
	}
	logger.Debug("transcript mirrored", zap.String("object", key))
}

func (c *Converter) record(ctx context.Context, runID, providerName, hash string, transcript *model.Transcript, res model.FileResult, logger *zap.Logger) {
	rec := &model.TranscriptionRecord{
		RunID:         runID,
		FileName:      res.File.Name,
		FilePath:      res.File.Path,
		Format:        string(res.File.Format),
		FileHash:      hash,
		AudioDuration: res.AudioDuration,
		Provider:      providerName,
		ModelName:     c.decoding.Model,
		Language:      res.Language,
		HasError:      res.Err != nil,
	}
	if transcript != nil && transcript.Model != "" {
		rec.ModelName = transcript.Model
	}
	if res.Err != nil {
		rec.ErrorMessage = res.Err.Error()
	} else {
		rec.OutputPath = res.OutputPath
	}
	if err := c.db.RecordToDB(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("failed to record history", zap.Error(err))
	}
}

func (c *Converter) writeMetrics(path string) {
	if err := c.metrics.WriteTextfile(path); err != nil {
		c.logger.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
	}
}
