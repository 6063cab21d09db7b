// Package metrics times the list operations.
//
// Measurements are kept in memory with atomic counters and can be served
// to Prometheus through Handler. Collection is on unless FLEXLIST_METRICS=0.
//
//	func (l *List) FilterItems() {
//	    defer metrics.Timer(metrics.FilterItems)()
//	    ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() { enabled.Store(os.Getenv("FLEXLIST_METRICS") != "0") }

// Enabled returns whether metrics collection is enabled.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric aggregates the durations of one operation.
type TimingMetric struct {
	name    string
	help    string
	count   int64
	totalNs int64
	maxNs   int64
	minNs   int64 // 0 means not set
}

func newTimingMetric(name, help string) *TimingMetric {
	return &TimingMetric{name: name, help: help}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()

	atomic.AddInt64(&m.count, 1)
	atomic.AddInt64(&m.totalNs, ns)

	for {
		old := atomic.LoadInt64(&m.maxNs)
		if ns <= old || atomic.CompareAndSwapInt64(&m.maxNs, old, ns) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&m.minNs)
		if old != 0 && ns >= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.minNs, old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Help describes the operation.
func (m *TimingMetric) Help() string { return m.help }

// Count returns the number of measurements.
func (m *TimingMetric) Count() int64 { return atomic.LoadInt64(&m.count) }

// Total returns the summed duration.
func (m *TimingMetric) Total() time.Duration {
	return time.Duration(atomic.LoadInt64(&m.totalNs))
}

// Max returns the longest measurement.
func (m *TimingMetric) Max() time.Duration {
	return time.Duration(atomic.LoadInt64(&m.maxNs))
}

// Stats returns a snapshot.
func (m *TimingMetric) Stats() TimingStats {
	count := atomic.LoadInt64(&m.count)
	totalNs := atomic.LoadInt64(&m.totalNs)
	maxNs := atomic.LoadInt64(&m.maxNs)
	minNs := atomic.LoadInt64(&m.minNs)

	var avgNs int64
	if count > 0 {
		avgNs = totalNs / count
	}

	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(totalNs) / 1e6,
		AvgMs:   float64(avgNs) / 1e6,
		MaxMs:   float64(maxNs) / 1e6,
		MinMs:   float64(minNs) / 1e6,
	}
}

// Reset clears the measurements.
func (m *TimingMetric) Reset() {
	atomic.StoreInt64(&m.count, 0)
	atomic.StoreInt64(&m.totalNs, 0)
	atomic.StoreInt64(&m.maxNs, 0)
	atomic.StoreInt64(&m.minNs, 0)
}

// TimingStats is a snapshot of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts a measurement and returns the function that ends it.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// TimerWithCallback is Timer that also hands the duration to cb.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Operations timed by the list and the terminal UI.
var (
	RemoveItems = newTimingMetric("remove_items", "Removing rows into the undo bin.")
	Restore     = newTimingMetric("restore", "Restoring rows from the undo bin.")
	FilterItems = newTimingMetric("filter_items", "Applying the search text.")
	AnimateTo   = newTimingMetric("animate_to", "Diffing rows into range notifications.")
	Expand      = newTimingMetric("expand", "Expanding a row.")
	Collapse    = newTimingMetric("collapse", "Collapsing a row.")
	Load        = newTimingMetric("load", "Loading items from the data source.")
	UIRender    = newTimingMetric("ui_render", "Rendering the terminal view.")
)

// AllTimingMetrics returns every timing metric.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{RemoveItems, Restore, FilterItems, AnimateTo, Expand, Collapse, Load, UIRender}
}

// ResetAll resets every timing metric.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have measurements.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
