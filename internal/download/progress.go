package download

import (
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress renders per-task progress.
type Progress interface {
	Track(label string) Tracker
	Wait()
}

// Tracker receives updates for a single task.
type Tracker interface {
	Update(percent float64)
	Finish(ok bool)
}

var percentPattern = regexp.MustCompile(`\((\d+(?:\.\d+)?)%\)`)

// parsePercent extracts the "(12.3%)" figure from a downloader progress line.
func parsePercent(line string) (float64, bool) {
	match := percentPattern.FindStringSubmatch(line)
	if len(match) < 2 {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	if value > 100 {
		value = 100
	}
	return value, true
}

type nopProgress struct{}

func (nopProgress) Track(string) Tracker { return nopTracker{} }
func (nopProgress) Wait()                {}

type nopTracker struct{}

func (nopTracker) Update(float64) {}
func (nopTracker) Finish(bool)    {}

// BarProgress draws one mpb bar per task.
type BarProgress struct {
	progress *mpb.Progress
}

// NewBarProgress renders bars to w.
func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{progress: mpb.New(mpb.WithOutput(w), mpb.WithWidth(48))}
}

const barScale = 1000

func (b *BarProgress) Track(label string) Tracker {
	name := truncateLabel(label, 48)
	bar := b.progress.AddBar(barScale,
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.OnAbort(
				decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
				"failed",
			),
		),
	)
	return &barTracker{bar: bar}
}

func (b *BarProgress) Wait() { b.progress.Wait() }

type barTracker struct {
	mu   sync.Mutex
	bar  *mpb.Bar
	done bool
}

func (t *barTracker) Update(percent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.bar.SetCurrent(int64(percent * barScale / 100))
}

func (t *barTracker) Finish(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	if ok {
		t.bar.SetCurrent(barScale)
		return
	}
	t.bar.Abort(false)
}

func truncateLabel(label string, limit int) string {
	runes := []rune(label)
	if len(runes) <= limit {
		return label
	}
	return string(runes[:limit-1]) + "…"
}
