package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mfcatalog/internal/core/types"

	"github.com/stretchr/testify/assert"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker("actor")
	assert.Equal(t, "actor", tr.Name())
	assert.Equal(t, types.StatusPending, tr.Status())
	assert.Zero(t, tr.Duration())

	tr.Start()
	assert.True(t, tr.IsRunning())
	assert.False(t, tr.IsCompleted())

	tr.Update(nil)
	assert.Equal(t, types.StatusCompleted, tr.Status())
	assert.True(t, tr.IsCompleted())
	assert.NoError(t, tr.Err())

	tr.Start()
	tr.Update(fmt.Errorf("run: %w", context.Canceled))
	assert.Equal(t, types.StatusCanceled, tr.Status())

	tr.Start()
	boom := errors.New("boom")
	tr.Update(boom)
	assert.Equal(t, types.StatusFailed, tr.Status())
	assert.Equal(t, boom, tr.Err())

	tr.Reset()
	assert.Equal(t, types.StatusPending, tr.Status())
	assert.Nil(t, tr.Err())
}

func TestTrackerCounters(t *testing.T) {
	tr := NewTracker("import")
	tr.SetTotal(4)
	tr.Start()

	tr.Record(true, true)
	tr.Record(true, false)
	tr.Record(false, false)
	assert.EqualValues(t, 2, tr.Succeeded())
	assert.EqualValues(t, 1, tr.Failed())
	assert.EqualValues(t, 1, tr.Modified())
	assert.EqualValues(t, 3, tr.Processed())
	assert.InDelta(t, 0.75, tr.Progress(), 1e-9)

	tr.Update(nil)
	assert.Contains(t, tr.Summary(), "3 requests (2 ok, 1 failed, 1 modified) in ")

	tr.SetTotal(-3)
	assert.Zero(t, tr.Total())
	assert.Zero(t, tr.Progress())
}

func TestSummaryGroupsThousands(t *testing.T) {
	tr := NewTracker("import")
	for range 1500 {
		tr.Record(true, false)
	}
	assert.Contains(t, tr.Summary(), "1,500 requests (1,500 ok")
}

func TestSpeed(t *testing.T) {
	tr := NewTracker("import")
	tr.Record(true, false)
	assert.Zero(t, tr.Speed())
	assert.Contains(t, tr.Summary(), "in 0s, 0/s")

	tr.Start()
	for range 10 {
		tr.Record(true, false)
	}
	time.Sleep(5 * time.Millisecond)
	tr.Update(nil)
	assert.Greater(t, tr.Speed(), 0.0)
	assert.Less(t, tr.Speed(), 11/0.005)
	assert.Contains(t, tr.Summary(), "/s")
}
