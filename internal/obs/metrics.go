package obs

import (
	"sync/atomic"

	"main/internal/schema"
)

// Metrics is a set of lock-free counters for the hot path. All methods
// are nil-safe so callers never need to guard the receiver.
type Metrics struct {
	eventCounts [schema.EventDisconnect + 1]atomic.Uint64

	staleBooks      atomic.Uint64
	unknownOrders   atomic.Uint64
	unknownHedges   atomic.Uint64
	ordersSubmitted atomic.Uint64
	ordersRejected  atomic.Uint64
	hedgeRetries    atomic.Uint64
	hedgesAbandoned atomic.Uint64
	unhedgedVolume  atomic.Int64
	queueDrops      atomic.Uint64

	eventLatency LatencyStats
	quoteEval    LatencyStats
}

// NewMetrics creates an empty metrics set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// CountEvent records one dispatched event of the given type.
func (m *Metrics) CountEvent(t schema.EventType) {
	if m == nil || int(t) >= len(m.eventCounts) {
		return
	}
	m.eventCounts[t].Add(1)
}

// IncStaleBook records one rejected out-of-order book update.
func (m *Metrics) IncStaleBook() {
	if m == nil {
		return
	}
	m.staleBooks.Add(1)
}

// IncUnknownOrder records one callback for an untracked order id.
func (m *Metrics) IncUnknownOrder() {
	if m == nil {
		return
	}
	m.unknownOrders.Add(1)
}

// IncUnknownHedge records one hedge callback for an untracked id.
func (m *Metrics) IncUnknownHedge() {
	if m == nil {
		return
	}
	m.unknownHedges.Add(1)
}

// IncOrderSubmitted records one order sent to the venue.
func (m *Metrics) IncOrderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmitted.Add(1)
}

// IncOrderRejected records one order the pre-trade gate refused.
func (m *Metrics) IncOrderRejected() {
	if m == nil {
		return
	}
	m.ordersRejected.Add(1)
}

// IncHedgeRetry records one re-issued hedge after a venue failure.
func (m *Metrics) IncHedgeRetry() {
	if m == nil {
		return
	}
	m.hedgeRetries.Add(1)
}

// IncHedgeAbandoned records one hedge given up after exhausted retries.
func (m *Metrics) IncHedgeAbandoned() {
	if m == nil {
		return
	}
	m.hedgesAbandoned.Add(1)
}

// AddUnhedged accumulates exposure left uncovered by abandoned hedges.
func (m *Metrics) AddUnhedged(volume schema.Volume) {
	if m == nil {
		return
	}
	m.unhedgedVolume.Add(int64(volume))
}

// IncQueueDrop records one event lost to a full bus queue.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	m.queueDrops.Add(1)
}

// ObserveEventLatency records feed-to-dispatch latency in nanoseconds.
func (m *Metrics) ObserveEventLatency(ns int64) {
	if m == nil {
		return
	}
	m.eventLatency.Observe(ns)
}

// ObserveQuoteEval records one quote policy evaluation in nanoseconds.
func (m *Metrics) ObserveQuoteEval(ns int64) {
	if m == nil {
		return
	}
	m.quoteEval.Observe(ns)
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	EventCounts     [schema.EventDisconnect + 1]uint64
	StaleBooks      uint64
	UnknownOrders   uint64
	UnknownHedges   uint64
	OrdersSubmitted uint64
	OrdersRejected  uint64
	HedgeRetries    uint64
	HedgesAbandoned uint64
	UnhedgedVolume  int64
	QueueDrops      uint64
	EventLatency    LatencySnapshot
	QuoteEval       LatencySnapshot
}

// Snapshot copies the current counter values. Counters keep advancing
// while the copy is taken, so the snapshot is advisory, not atomic.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	var s Snapshot
	for i := range m.eventCounts {
		s.EventCounts[i] = m.eventCounts[i].Load()
	}
	s.StaleBooks = m.staleBooks.Load()
	s.UnknownOrders = m.unknownOrders.Load()
	s.UnknownHedges = m.unknownHedges.Load()
	s.OrdersSubmitted = m.ordersSubmitted.Load()
	s.OrdersRejected = m.ordersRejected.Load()
	s.HedgeRetries = m.hedgeRetries.Load()
	s.HedgesAbandoned = m.hedgesAbandoned.Load()
	s.UnhedgedVolume = m.unhedgedVolume.Load()
	s.QueueDrops = m.queueDrops.Load()
	s.EventLatency = m.eventLatency.Snapshot()
	s.QuoteEval = m.quoteEval.Snapshot()
	return s
}
