package hedge

import (
	"errors"

	"main/internal/book"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/oms"
	"main/internal/risk"
	"main/internal/schema"
)

var ErrUnknownHedge = errors.New("hedge not found")

// Venue is the boundary command the reconciler issues.
type Venue interface {
	InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume)
}

// IDSource allocates client order ids. Hedges share the id space with
// regular orders so the venue sees one monotone stream.
type IDSource interface {
	NextID() uint64
}

// Config controls hedge retry and the optional primary-side unwind.
type Config struct {
	// RetryBudget is the number of re-submissions allowed after the
	// first failed hedge. Zero means a failed hedge is abandoned
	// immediately.
	RetryBudget int `json:"retryBudget"`
	// Unwind submits a fill-and-kill order on the primary instrument
	// after a hedge fills completely.
	Unwind bool `json:"unwind"`
}

// Hedge is one outstanding hedge order tied to an originating fill.
type Hedge struct {
	ID          uint64
	Side        schema.Side
	Price       schema.Price
	Volume      schema.Volume // original requested volume
	Remaining   schema.Volume
	OriginPrice schema.Price // price of the primary fill that caused it
	Attempts    int          // submissions so far, including the first
}

// Result describes what a hedge outcome caused.
type Result struct {
	Hedge     Hedge
	Failed    bool   // venue reported the price=0, volume=0 sentinel
	RetryID   uint64 // id of the re-issued hedge, when retried
	Abandoned bool   // retry budget exhausted, exposure left uncovered
	Done      bool   // hedge fully filled and retired
	UnwindID  uint64 // id of the unwind order, when one was submitted
}

// Reconciler converts primary-instrument fills into aggressive hedge
// orders on the secondary instrument and tracks them to a terminal
// outcome. It owns the hedge table; exposure changes flow through the
// shared ledger only on confirmed fills.
type Reconciler struct {
	cfg     Config
	venue   Venue
	ids     IDSource
	gate    *risk.Gate
	ledger  *ledger.Ledger
	orders  *oms.Manager
	books   *book.Store
	metrics *obs.Metrics
	hedges  map[uint64]*Hedge
}

// NewReconciler creates a reconciler with an empty hedge table.
func NewReconciler(cfg Config, venue Venue, ids IDSource, gate *risk.Gate, led *ledger.Ledger, orders *oms.Manager, books *book.Store, metrics *obs.Metrics) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		venue:   venue,
		ids:     ids,
		gate:    gate,
		ledger:  led,
		orders:  orders,
		books:   books,
		metrics: metrics,
		hedges:  make(map[uint64]*Hedge),
	}
}

// OnPrimaryFill issues a hedge for a confirmed primary-instrument fill:
// opposite side, same volume, priced at the worst-acceptable tick so it
// executes immediately. Returns the hedge id.
func (r *Reconciler) OnPrimaryFill(side schema.Side, fillPrice schema.Price, fillVolume schema.Volume) uint64 {
	hedgeSide := side.Opposite()
	return r.submit(&Hedge{
		Side:        hedgeSide,
		Price:       r.gate.WorstTick(hedgeSide),
		Volume:      fillVolume,
		Remaining:   fillVolume,
		OriginPrice: fillPrice,
		Attempts:    0,
	})
}

func (r *Reconciler) submit(h *Hedge) uint64 {
	h.ID = r.ids.NextID()
	h.Attempts++
	r.hedges[h.ID] = h
	r.venue.InsertHedgeOrder(h.ID, h.Side, h.Price, h.Volume)
	return h.ID
}

// OnHedgeFilled applies a hedge outcome. The price=0, volume=0 sentinel
// marks a failed execution and triggers a retry for the original volume
// while budget remains; a real fill updates the secondary exposure and
// retires the hedge once fully filled.
func (r *Reconciler) OnHedgeFilled(fill schema.HedgeFilled) (Result, error) {
	h, ok := r.hedges[fill.OrderID]
	if !ok {
		return Result{}, ErrUnknownHedge
	}

	if fill.Price == 0 && fill.Volume == 0 {
		delete(r.hedges, h.ID)
		res := Result{Hedge: *h, Failed: true}
		if h.Attempts > r.cfg.RetryBudget {
			r.metrics.IncHedgeAbandoned()
			r.metrics.AddUnhedged(h.Remaining)
			res.Abandoned = true
			return res, nil
		}
		retry := &Hedge{
			Side:        h.Side,
			Price:       r.gate.WorstTick(h.Side),
			Volume:      h.Volume,
			Remaining:   h.Volume,
			OriginPrice: h.OriginPrice,
			Attempts:    h.Attempts,
		}
		res.RetryID = r.submit(retry)
		r.metrics.IncHedgeRetry()
		return res, nil
	}

	r.ledger.ApplyFill(schema.InstrumentSecondary, h.Side, fill.Volume)
	h.Remaining -= fill.Volume
	if h.Remaining > 0 {
		return Result{Hedge: *h}, nil
	}
	h.Remaining = 0
	delete(r.hedges, h.ID)
	res := Result{Hedge: *h, Done: true}
	if r.cfg.Unwind {
		res.UnwindID = r.unwind(h)
	}
	return res, nil
}

// unwind submits a fill-and-kill order on the primary instrument on the
// side opposite the hedge, priced at the current best quote on that
// side. A missing or one-sided primary book skips the unwind.
func (r *Reconciler) unwind(h *Hedge) uint64 {
	snap, ok := r.books.Snapshot(schema.InstrumentPrimary)
	if !ok {
		return 0
	}
	side := h.Side.Opposite()
	var price schema.Price
	if side == schema.SideBuy {
		price = snap.BestBid().Price
	} else {
		price = snap.BestAsk().Price
	}
	if price == 0 {
		return 0
	}
	id, err := r.orders.Submit(schema.InstrumentPrimary, side, price, h.Volume, schema.LifespanFillAndKill, schema.PurposeUnwind)
	if err != nil {
		return 0
	}
	return id
}

// Hedge returns the tracked hedge for an id.
func (r *Reconciler) Hedge(id uint64) (Hedge, bool) {
	h, ok := r.hedges[id]
	if !ok {
		return Hedge{}, false
	}
	return *h, true
}

// Len returns the number of outstanding hedges.
func (r *Reconciler) Len() int {
	return len(r.hedges)
}
