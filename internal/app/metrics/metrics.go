// Package metrics records batch counters on a private Prometheus registry and
// writes them in node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"audio-transcriber/internal/app/model"
)

const namespace = "audio_transcriber"

type Recorder struct {
	registry     *prometheus.Registry
	files        *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	audioSeconds prometheus.Counter
	cacheHits    prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Processed audio files by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall-clock time spent transcribing one file.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"provider"}),
		audioSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_seconds_total",
			Help:      "Seconds of audio transcribed.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Transcripts served from the cache.",
		}),
	}
	r.registry.MustRegister(r.files, r.duration, r.audioSeconds, r.cacheHits)
	return r
}

// Observe records one finished file.
func (r *Recorder) Observe(providerName string, res model.FileResult) {
	r.files.WithLabelValues(string(res.Status)).Inc()
	if res.Status != model.StatusSucceeded {
		return
	}
	if res.CacheHit {
		r.cacheHits.Inc()
	} else {
		r.duration.WithLabelValues(providerName).Observe(res.Elapsed.Seconds())
	}
	if res.AudioDuration > 0 {
		r.audioSeconds.Add(res.AudioDuration)
	}
}

// ObserveElapsed is used by callers that time work outside a FileResult.
func (r *Recorder) ObserveElapsed(providerName string, d time.Duration) {
	r.duration.WithLabelValues(providerName).Observe(d.Seconds())
}

// WriteTextfile atomically writes every metric to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// Registry exposes the private registry for tests and embedding.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
