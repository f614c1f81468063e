package profiler

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Options configures the stage profiler.
type Options struct {
	// ReportInterval specifies how often MaybeReport emits a report (default: 5s).
	ReportInterval time.Duration
	// MaxSamples is the number of recent durations kept per stage (default: 300).
	MaxSamples int
	// Now overrides the clock, for tests.
	Now func() time.Time
	// Logf receives reports (default: log.Printf).
	Logf func(format string, args ...any)
}

// StageProfiler times the stages of the frame loop.
//
// It is driven synchronously by the loop: stages are timed with Start and the
// loop calls MaybeReport once per iteration. A nil *StageProfiler is valid and
// records nothing.
type StageProfiler struct {
	interval   time.Duration
	maxSamples int
	now        func() time.Time
	logf       func(format string, args ...any)

	startTime  time.Time
	lastReport time.Time
	stages     map[string]*TimeTracker
	memStats   runtime.MemStats
}

// TimeTracker tracks timing statistics for one stage.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Stats is a snapshot of a TimeTracker.
type Stats struct {
	Name  string
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Count int64
}

// New creates a stage profiler.
//
// Arguments:
//   - opts: Configuration options for the profiler.
//
// Returns:
//   - *StageProfiler: A profiler whose report clock starts now.
func New(opts Options) *StageProfiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 5 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 300
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}

	now := opts.Now()
	return &StageProfiler{
		interval:   opts.ReportInterval,
		maxSamples: opts.MaxSamples,
		now:        opts.Now,
		logf:       opts.Logf,
		startTime:  now,
		lastReport: now,
		stages:     make(map[string]*TimeTracker),
	}
}

// Start begins timing a stage.
//
// Returns:
//   - A function to call when the stage completes.
func (p *StageProfiler) Start(name string) func() {
	if p == nil {
		return func() {}
	}
	start := p.now()
	return func() {
		p.Record(name, p.now().Sub(start))
	}
}

// Record adds one duration sample to the named stage.
func (p *StageProfiler) Record(name string, d time.Duration) {
	if p == nil {
		return
	}

	tracker, ok := p.stages[name]
	if !ok {
		tracker = &TimeTracker{minTime: d, maxTime: d}
		p.stages[name] = tracker
	}

	tracker.durations = append(tracker.durations, d)
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.totalTime += d
	tracker.count++

	if d < tracker.minTime {
		tracker.minTime = d
	}
	if d > tracker.maxTime {
		tracker.maxTime = d
	}
}

// Snapshot returns per-stage statistics sorted by stage name.
func (p *StageProfiler) Snapshot() []Stats {
	if p == nil {
		return nil
	}

	out := make([]Stats, 0, len(p.stages))
	for name, tracker := range p.stages {
		if len(tracker.durations) == 0 {
			continue
		}
		out = append(out, Stats{
			Name:  name,
			Avg:   tracker.totalTime / time.Duration(len(tracker.durations)),
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
			Count: tracker.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MaybeReport emits a report when the report interval has elapsed since the last one.
//
// Returns:
//   - bool: True if a report was emitted.
func (p *StageProfiler) MaybeReport() bool {
	if p == nil {
		return false
	}
	now := p.now()
	if now.Sub(p.lastReport) < p.interval {
		return false
	}
	p.lastReport = now
	p.logf("%s", p.Report())
	return true
}

// Report formats the current statistics and memory usage.
func (p *StageProfiler) Report() string {
	if p == nil {
		return ""
	}

	runtime.ReadMemStats(&p.memStats)

	var b strings.Builder
	fmt.Fprintf(&b, "profile uptime=%v heap=%s gc=%d",
		p.now().Sub(p.startTime).Truncate(time.Millisecond),
		formatBytes(p.memStats.HeapAlloc),
		p.memStats.NumGC)
	for _, s := range p.Snapshot() {
		fmt.Fprintf(&b, " | %s avg=%v min=%v max=%v n=%d",
			s.Name,
			s.Avg.Truncate(time.Microsecond),
			s.Min.Truncate(time.Microsecond),
			s.Max.Truncate(time.Microsecond),
			s.Count)
	}
	return b.String()
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
