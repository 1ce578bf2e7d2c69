package converter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"audio-transcriber/internal/app/model"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressManager owns the bar container of one batch. A disabled manager
// hands out bars whose methods do nothing.
type ProgressManager struct {
	container *mpb.Progress
}

// ProgressBar counts finished files and shows the last file and the number
// of failures so far.
type ProgressBar struct {
	bar *mpb.Bar

	mu     sync.Mutex
	last   string
	failed int
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressManager{
		container: mpb.New(
			mpb.WithOutput(writer),
			mpb.WithRefreshRate(150*time.Millisecond),
		),
	}
}

func (pm *ProgressManager) CreateBar(total int, description string) *ProgressBar {
	pb := &ProgressBar{}
	if pm.container == nil {
		return pb
	}

	pb.bar = pm.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO, decor.WCSyncSpace), "done"),
			decor.Any(pb.status, decor.WCSyncSpace),
		),
	)
	return pb
}

// Done advances the bar by one finished file.
func (pb *ProgressBar) Done(res model.FileResult) {
	if pb.bar == nil {
		return
	}
	pb.mu.Lock()
	pb.last = res.File.Name
	if res.Status == model.StatusFailed {
		pb.failed++
	}
	pb.mu.Unlock()
	pb.bar.Increment()
}

// Complete marks the bar done at its current count so Wait never blocks on an
// interrupted batch.
func (pb *ProgressBar) Complete() {
	if pb.bar != nil {
		pb.bar.SetTotal(pb.bar.Current(), true)
	}
}

func (pb *ProgressBar) status(decor.Statistics) string {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.failed > 0 {
		return fmt.Sprintf("%s (%d failed)", pb.last, pb.failed)
	}
	return pb.last
}

func (pm *ProgressManager) Wait() {
	if pm.container != nil {
		pm.container.Wait()
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShouldShowProgress enables the bar when forced or when stderr is a terminal.
func ShouldShowProgress(forced bool) bool {
	return forced || IsTTY(os.Stderr)
}
