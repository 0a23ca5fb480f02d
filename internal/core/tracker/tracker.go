package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mfcatalog/internal/core/types"

	"github.com/dustin/go-humanize"
)

// Tracker follows the lifecycle of a long running component and counts the
// requests it has answered. It is safe for concurrent use.
type Tracker struct {
	name      string
	mu        sync.RWMutex
	status    types.Status
	startedAt time.Time
	endedAt   time.Time
	succeeded int64
	failed    int64
	modified  int64
	total     int64
	err       error
}

func NewTracker(name string) *Tracker {
	return &Tracker{
		name:   name,
		status: types.StatusPending,
	}
}

func (t *Tracker) Name() string {
	return t.name
}

func (t *Tracker) Status() types.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *Tracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

func (t *Tracker) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	switch t.status {
	case types.StatusPending:
		return 0
	case types.StatusRunning:
		return time.Since(t.startedAt)
	default:
		return t.endedAt.Sub(t.startedAt)
	}
}

func (t *Tracker) DurationString() string {
	return t.Duration().Round(time.Millisecond).String()
}

// Record counts one answered request.
func (t *Tracker) Record(success, modified bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if success {
		t.succeeded++
	} else {
		t.failed++
	}
	if modified {
		t.modified++
	}
}

func (t *Tracker) Succeeded() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.succeeded
}

func (t *Tracker) Failed() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.failed
}

func (t *Tracker) Modified() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modified
}

// Processed returns the number of answered requests.
func (t *Tracker) Processed() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.succeeded + t.failed
}

// Total is the number of requests expected, when known in advance.
func (t *Tracker) Total() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

func (t *Tracker) SetTotal(total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = max(0, total)
}

// Progress returns processed/total as a float from 0 to 1.
func (t *Tracker) Progress() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Processed()) / float64(total)
}

// Speed returns the average number of requests answered per second.
func (t *Tracker) Speed() float64 {
	duration := t.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(t.Processed()) / duration
}

// Summary renders the counters for humans, e.g.
// "1,204 requests (1,200 ok, 4 failed, 310 modified) in 1.2s, 1,003/s".
func (t *Tracker) Summary() string {
	t.mu.RLock()
	succeeded, failed, modified := t.succeeded, t.failed, t.modified
	t.mu.RUnlock()

	return fmt.Sprintf("%s requests (%s ok, %s failed, %s modified) in %s, %s/s",
		humanize.Comma(succeeded+failed), humanize.Comma(succeeded),
		humanize.Comma(failed), humanize.Comma(modified), t.DurationString(),
		humanize.Comma(int64(t.Speed())))
}

// Start marks the tracker running.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Now()
	t.status = types.StatusRunning
	t.err = nil
}

// Update ends the tracker with the outcome err.
func (t *Tracker) Update(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endedAt = time.Now()
	switch {
	case err == nil:
		t.status = types.StatusCompleted
	case errors.Is(err, context.Canceled):
		t.status = types.StatusCanceled
	default:
		t.status = types.StatusFailed
	}
	t.err = err
}

// Reset resets the tracker to its initial state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Time{}
	t.endedAt = time.Time{}
	t.status = types.StatusPending
	t.err = nil
	t.succeeded = 0
	t.failed = 0
	t.modified = 0
	t.total = 0
}

func (t *Tracker) IsRunning() bool {
	return t.Status() == types.StatusRunning
}

func (t *Tracker) IsCompleted() bool {
	return t.Status().IsComplete()
}
