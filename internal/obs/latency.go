package obs

import "sync/atomic"

// LatencyStats accumulates count, sum, min and max of observed durations
// in nanoseconds without locks.
type LatencyStats struct {
	count atomic.Uint64
	sum   atomic.Int64
	min   atomic.Int64
	max   atomic.Int64
}

// Observe records one duration.
func (l *LatencyStats) Observe(ns int64) {
	first := l.count.Add(1) == 1
	l.sum.Add(ns)
	if first {
		l.min.Store(ns)
		l.max.Store(ns)
		return
	}
	for {
		cur := l.min.Load()
		if ns >= cur || l.min.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := l.max.Load()
		if ns <= cur || l.max.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// LatencySnapshot is a point-in-time copy of latency statistics.
type LatencySnapshot struct {
	Count uint64
	Sum   int64
	Min   int64
	Max   int64
}

// Mean returns the average observed duration in nanoseconds.
func (s LatencySnapshot) Mean() int64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / int64(s.Count)
}

// Snapshot copies the current statistics.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	return LatencySnapshot{
		Count: l.count.Load(),
		Sum:   l.sum.Load(),
		Min:   l.min.Load(),
		Max:   l.max.Load(),
	}
}
