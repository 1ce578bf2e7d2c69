package converter

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"audio-transcriber/internal/app/model"
)

// Report is the outcome of one batch, with results in collection order.
type Report struct {
	RunID    string
	Provider string
	Started  time.Time
	Elapsed  time.Duration
	Results  []model.FileResult
}

// Count returns the number of results with status.
func (r *Report) Count(status model.FileStatus) int {
	return lo.CountBy(r.Results, func(res model.FileResult) bool {
		return res.Status == status
	})
}

// Failed returns the failed results.
func (r *Report) Failed() []model.FileResult {
	return lo.Filter(r.Results, func(res model.FileResult, _ int) bool {
		return res.Status == model.StatusFailed
	})
}

func (r *Report) HasFailures() bool {
	return r.Count(model.StatusFailed) > 0
}

// WriteSummary prints one line per file followed by the totals.
func (r *Report) WriteSummary(w io.Writer) {
	for _, res := range r.Results {
		switch res.Status {
		case model.StatusSucceeded:
			line := fmt.Sprintf("  ok      %s -> %s", res.File.Name, res.OutputPath)
			if res.Language != "" {
				line += fmt.Sprintf(" [%s %.2f]", res.Language, res.LanguageProbability)
			}
			if res.CacheHit {
				line += " (cached)"
			}
			fmt.Fprintf(w, "%s (%s)\n", line, res.Elapsed.Round(time.Millisecond))
		case model.StatusSkipped:
			fmt.Fprintf(w, "  skipped %s (output exists)\n", res.File.Name)
		default:
			fmt.Fprintf(w, "  failed  %s: %v\n", res.File.Name, res.Err)
		}
	}
	fmt.Fprintf(w, "%d files: %d succeeded, %d failed, %d skipped in %s (run %s)\n",
		len(r.Results),
		r.Count(model.StatusSucceeded),
		r.Count(model.StatusFailed),
		r.Count(model.StatusSkipped),
		r.Elapsed.Round(time.Millisecond),
		r.RunID)
}
