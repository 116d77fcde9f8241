// Package metrics tracks recognition-call latencies over a rolling window.
package metrics

import (
	"sort"
	"sync"
	"time"
)

type observation struct {
	at time.Time
	ms float64
}

// Snapshot is a point-in-time aggregate of recent latency observations.
type Snapshot struct {
	Count  int     `json:"count"`
	Errors int64   `json:"errors"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Latency aggregates call durations inside a rolling window. Observations
// older than the window fall out of every snapshot.
type Latency struct {
	mu     sync.Mutex
	window time.Duration
	obs    []observation
	errors int64
}

// NewLatency creates a tracker; window defaults to one hour.
func NewLatency(window time.Duration) *Latency {
	if window <= 0 {
		window = time.Hour
	}
	return &Latency{window: window}
}

// Observe records one successful call duration.
func (l *Latency) Observe(d time.Duration) {
	if d < 0 {
		d = 0
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)
	l.obs = append(l.obs, observation{at: now, ms: float64(d) / float64(time.Millisecond)})
}

// ObserveError counts a failed call. Failures do not contribute latencies.
func (l *Latency) ObserveError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

// Snapshot aggregates the observations still inside the window.
func (l *Latency) Snapshot() Snapshot {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)

	snap := Snapshot{Errors: l.errors}
	if len(l.obs) == 0 {
		return snap
	}

	values := make([]float64, len(l.obs))
	var sum float64
	for i, o := range l.obs {
		values[i] = o.ms
		sum += o.ms
	}
	sort.Float64s(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = sum / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (l *Latency) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := l.obs[:0]
	for _, o := range l.obs {
		if !o.at.Before(cutoff) {
			keep = append(keep, o)
		}
	}
	l.obs = keep
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
