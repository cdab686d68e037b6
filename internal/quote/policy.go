package quote

import (
	"main/internal/book"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/oms"
	"main/internal/risk"
	"main/internal/schema"
)

// Config tunes the two-sided quoting policy.
type Config struct {
	// Volume is the nominal size quoted on each side before throttling.
	Volume schema.Volume `json:"volume"`
	// ImbalanceThreshold is the book-volume ratio beyond which the quote
	// skews away from the heavy side.
	ImbalanceThreshold float64 `json:"imbalanceThreshold"`
	// SkewFromSecondary reads the imbalance signal from the secondary
	// instrument's book instead of the primary's.
	SkewFromSecondary bool `json:"skewFromSecondary"`
}

// Policy maintains one bid and one ask quote on the primary instrument,
// re-evaluated on every accepted primary book update. It never mutates
// exposure; it only issues, replaces and cancels quote orders through
// the order manager.
type Policy struct {
	cfg     Config
	gate    *risk.Gate
	ledger  *ledger.Ledger
	orders  *oms.Manager
	books   *book.Store
	metrics *obs.Metrics
}

// NewPolicy creates a policy over the shared order table and ledger.
func NewPolicy(cfg Config, gate *risk.Gate, led *ledger.Ledger, orders *oms.Manager, books *book.Store, metrics *obs.Metrics) *Policy {
	return &Policy{
		cfg:     cfg,
		gate:    gate,
		ledger:  led,
		orders:  orders,
		books:   books,
		metrics: metrics,
	}
}

// OnBookUpdate re-evaluates both quotes against a fresh primary
// snapshot. A one-sided or empty book leaves existing quotes untouched.
func (p *Policy) OnBookUpdate(snap book.Snapshot) {
	if snap.Instrument != schema.InstrumentPrimary {
		return
	}
	bestBid := snap.BestBid().Price
	bestAsk := snap.BestAsk().Price
	if bestBid == 0 || bestAsk == 0 {
		return
	}

	bidSkew, askSkew := p.skewTicks(snap)
	tick := p.gate.TickSize()
	bidPrice := p.gate.ClampToBand(bestBid - schema.Price(bidSkew)*tick)
	askPrice := p.gate.ClampToBand(bestAsk + schema.Price(askSkew)*tick)

	position := p.ledger.Position(schema.InstrumentPrimary)
	limit := p.gate.PositionLimit()
	bidVolume := throttle(p.cfg.Volume, position, limit, schema.SideBuy)
	askVolume := throttle(p.cfg.Volume, position, limit, schema.SideSell)

	p.converge(schema.SideBuy, bidPrice, bidVolume, position)
	p.converge(schema.SideSell, askPrice, askVolume, position)
}

// skewTicks maps the configured book's volume imbalance to per-side
// offsets in ticks. A heavy bid side pushes the ask wider, a heavy ask
// side pushes the bid wider; balance keeps one tick on both.
func (p *Policy) skewTicks(snap book.Snapshot) (bid, ask int) {
	src := snap
	if p.cfg.SkewFromSecondary {
		other, ok := p.books.Snapshot(schema.InstrumentSecondary)
		if !ok {
			return 1, 1
		}
		src = other
	}
	bidVolume, askVolume := src.SideVolumes()
	total := bidVolume + askVolume
	if total == 0 {
		return 1, 1
	}
	ratio := float64(bidVolume-askVolume) / float64(total)
	switch {
	case ratio > p.cfg.ImbalanceThreshold:
		return 0, 2
	case ratio < -p.cfg.ImbalanceThreshold:
		return 2, 0
	default:
		return 1, 1
	}
}

// throttle shrinks the quoted size linearly as exposure approaches the
// limit on the side that would increase it. The favorable side keeps
// full size.
func throttle(size, position, limit schema.Volume, side schema.Side) schema.Volume {
	if limit <= 0 {
		return 0
	}
	var against schema.Volume
	switch side {
	case schema.SideBuy:
		against = position
	case schema.SideSell:
		against = -position
	}
	if against <= 0 {
		return size
	}
	if against >= limit {
		return 0
	}
	return size * (limit - against) / limit
}

// converge drives the live quote on one side toward the desired price
// and volume: submit when absent, replace when the price moved, cancel
// when exposure leaves no room.
func (p *Policy) converge(side schema.Side, price schema.Price, volume, position schema.Volume) {
	var current *oms.Order
	for _, q := range p.orders.Quotes(schema.InstrumentPrimary) {
		if q.Side == side {
			q := q
			current = &q
			break
		}
	}

	if current == nil {
		resting := p.orders.RestingVolume(schema.InstrumentPrimary, side)
		clamped := risk.ClampVolume(side, volume, position, resting, p.gate.PositionLimit())
		if clamped == 0 {
			return
		}
		if err := p.gate.Check(side, price, clamped, position, resting); err != nil {
			p.metrics.IncOrderRejected()
			return
		}
		if _, err := p.orders.Submit(schema.InstrumentPrimary, side, price, clamped, schema.LifespanGoodForDay, schema.PurposeQuote); err == nil {
			p.metrics.IncOrderSubmitted()
		}
		return
	}

	if current.Price == price {
		return
	}

	// Exclude the quote being replaced from the resting volume so the
	// replacement does not count against itself.
	resting := p.orders.RestingVolume(schema.InstrumentPrimary, side) - current.Remaining
	clamped := risk.ClampVolume(side, volume, position, resting, p.gate.PositionLimit())
	if clamped == 0 {
		p.orders.Cancel(current.ID)
		return
	}
	if err := p.gate.Check(side, price, clamped, position, resting); err != nil {
		p.metrics.IncOrderRejected()
		p.orders.Cancel(current.ID)
		return
	}
	if _, err := p.orders.Replace(current.ID, price, clamped); err == nil {
		p.metrics.IncOrderSubmitted()
	}
}
