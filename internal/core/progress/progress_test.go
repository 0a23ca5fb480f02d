package progress

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressDrawsToPlainWriter(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewProgress(WithOutput(out), WithRefreshRate(10*time.Millisecond))
	p.AddBar("import", "Importing", 3)

	p.mu.Lock()
	bar := p.bars["import"]
	p.mu.Unlock()
	require.NotNil(t, bar)

	for range 3 {
		p.Increment("import")
	}
	p.Increment("missing")
	assert.EqualValues(t, 3, bar.Current())
	p.Wait()

	assert.True(t, bar.Completed())
	assert.Contains(t, out.String(), "Importing")
}

func TestContainerOptionsAutoRefresh(t *testing.T) {
	assert.Len(t, ContainerOptions(&bytes.Buffer{}, time.Second), 3)

	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, ContainerOptions(f, time.Second), 3)
}

func TestProgressCloseIncompleteBar(t *testing.T) {
	p := NewProgress(WithOutput(&bytes.Buffer{}))
	p.AddBar("a", "A", 10)
	p.Increment("a")
	p.CloseBar("a")
	p.CloseBar("a")
	p.Increment("a")
	p.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.bars)
}
