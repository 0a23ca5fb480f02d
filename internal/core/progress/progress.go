package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Progress is a group of counting progress bars keyed by name.
type Progress struct {
	mu        sync.Mutex
	container *mpb.Progress
	bars      map[string]*mpb.Bar
}

type options struct {
	out         io.Writer
	refreshRate time.Duration
}

// Option configures a progress container.
type Option func(*options)

// WithOutput sets the output for the progress container.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithRefreshRate sets the refresh rate for the progress container.
func WithRefreshRate(refreshRate time.Duration) Option {
	return func(o *options) {
		o.refreshRate = refreshRate
	}
}

// NewProgress creates a new progress container drawing on stderr unless
// WithOutput says otherwise.
func NewProgress(opts ...Option) *Progress {
	o := options{out: os.Stderr, refreshRate: 150 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}
	return &Progress{
		container: mpb.New(ContainerOptions(o.out, o.refreshRate)...),
		bars:      make(map[string]*mpb.Bar),
	}
}

// ContainerOptions draws on w. mpb only renders to a terminal on its own, so
// any other writer gets auto refresh.
func ContainerOptions(w io.Writer, refreshRate time.Duration) []mpb.ContainerOption {
	opts := []mpb.ContainerOption{
		mpb.WithOutput(w),
		mpb.WithRefreshRate(refreshRate),
	}
	if !isTerminal(w) {
		opts = append(opts, mpb.WithAutoRefresh())
	}
	return opts
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DefaultBarOptions returns the decorators of a request counting bar.
func DefaultBarOptions(description string) []mpb.BarOption {
	return []mpb.BarOption{
		mpb.PrependDecorators(
			decor.OnComplete(decor.Spinner(spinner, decor.WCSyncSpaceR), "✓"),
			decor.Name(description, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d/%d", decor.WCSyncSpace),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO, decor.WCSyncSpace), ""),
			decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace),
		),
	}
}

// AddBar adds a bar counting up to total.
func (g *Progress) AddBar(id, description string, total int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bars[id] = g.container.AddBar(total, DefaultBarOptions(description)...)
}

// Increment advances the bar by one.
func (g *Progress) Increment(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if bar, ok := g.bars[id]; ok {
		bar.Increment()
	}
}

// CloseBar stops the bar, leaving it drawn as it is when it did not complete.
func (g *Progress) CloseBar(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if bar, ok := g.bars[id]; ok {
		if !bar.Completed() {
			bar.Abort(false)
		}
		delete(g.bars, id)
	}
}

// Wait closes every bar and waits for the final render.
func (g *Progress) Wait() {
	g.mu.Lock()
	for id, bar := range g.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
		delete(g.bars, id)
	}
	g.mu.Unlock()
	g.container.Wait()
}
