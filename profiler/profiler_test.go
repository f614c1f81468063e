package profiler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStartRecordsStage(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := New(Options{Now: clock.now})

	stop := p.Start("detect")
	clock.advance(4 * time.Millisecond)
	stop()

	stop = p.Start("detect")
	clock.advance(2 * time.Millisecond)
	stop()

	stats := p.Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, "detect", stats[0].Name)
	assert.Equal(t, 3*time.Millisecond, stats[0].Avg)
	assert.Equal(t, 2*time.Millisecond, stats[0].Min)
	assert.Equal(t, 4*time.Millisecond, stats[0].Max)
	assert.Equal(t, int64(2), stats[0].Count)
}

func TestMaxSamplesWindow(t *testing.T) {
	p := New(Options{MaxSamples: 2})

	p.Record("render", 10*time.Millisecond)
	p.Record("render", 2*time.Millisecond)
	p.Record("render", 4*time.Millisecond)

	stats := p.Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, 3*time.Millisecond, stats[0].Avg)
	assert.Equal(t, int64(3), stats[0].Count)
}

func TestMaybeReport(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var reports []string
	p := New(Options{
		ReportInterval: time.Second,
		Now:            clock.now,
		Logf: func(format string, args ...any) {
			reports = append(reports, fmt.Sprintf(format, args...))
		},
	})
	p.Record("classify", 20*time.Millisecond)

	assert.False(t, p.MaybeReport())
	clock.advance(time.Second)
	assert.True(t, p.MaybeReport())
	assert.False(t, p.MaybeReport())

	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "classify avg=20ms")
}

func TestNilProfiler(t *testing.T) {
	var p *StageProfiler

	p.Start("detect")()
	p.Record("detect", time.Millisecond)
	assert.Nil(t, p.Snapshot())
	assert.False(t, p.MaybeReport())
	assert.Empty(t, p.Report())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}
