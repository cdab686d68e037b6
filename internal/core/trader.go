package core

import (
	"time"

	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/hedge"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/oms"
	"main/internal/quote"
	"main/internal/risk"
	"main/internal/schema"
)

// Venue is the full command surface the trader drives.
type Venue interface {
	InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan)
	AmendOrderVolume(id uint64, volume schema.Volume)
	CancelOrder(id uint64)
	InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume)
}

// Journal receives confirmed executions for offline analysis. A nil
// journal disables recording.
type Journal interface {
	RecordFill(order oms.Order, price schema.Price, volume schema.Volume, position schema.Volume)
	RecordHedge(h hedge.Hedge, price schema.Price, volume schema.Volume, position schema.Volume)
}

// Config bundles the tunables of the decision core.
type Config struct {
	Risk  risk.Config  `json:"risk"`
	Quote quote.Config `json:"quote"`
	Hedge hedge.Config `json:"hedge"`
}

// Trader wires the decision core together and dispatches every boundary
// event. All handlers run on one goroutine; none of the owned state is
// locked.
type Trader struct {
	venue   Venue
	gate    *risk.Gate
	ledger  *ledger.Ledger
	books   *book.Store
	orders  *oms.Manager
	hedges  *hedge.Reconciler
	quoter  *quote.Policy
	metrics *obs.Metrics
	journal Journal

	ticks map[schema.Instrument]uint64
}

// NewTrader builds a trader over a venue. Metrics and journal may be nil.
func NewTrader(cfg Config, venue Venue, metrics *obs.Metrics, journal Journal) *Trader {
	gate := risk.NewGate(cfg.Risk)
	led := ledger.New(cfg.Risk.PositionLimit)
	books := book.NewStore()
	orders := oms.NewManager(venue)
	hedges := hedge.NewReconciler(cfg.Hedge, venue, orders, gate, led, orders, books, metrics)
	quoter := quote.NewPolicy(cfg.Quote, gate, led, orders, books, metrics)
	return &Trader{
		venue:   venue,
		gate:    gate,
		ledger:  led,
		books:   books,
		orders:  orders,
		hedges:  hedges,
		quoter:  quoter,
		metrics: metrics,
		journal: journal,
		ticks:   make(map[schema.Instrument]uint64),
	}
}

// Orders exposes the tracked-order table, mainly for tools and tests.
func (t *Trader) Orders() *oms.Manager {
	return t.orders
}

// Ledger exposes the position ledger, mainly for tools and tests.
func (t *Trader) Ledger() *ledger.Ledger {
	return t.ledger
}

// Books exposes the snapshot store, mainly for tools and tests.
func (t *Trader) Books() *book.Store {
	return t.books
}

// OnOrderBook applies a book update and re-quotes on primary ticks.
// Stale or duplicate sequence numbers are dropped.
func (t *Trader) OnOrderBook(update schema.BookUpdate) {
	snap, ok := t.books.Apply(update)
	if !ok {
		t.metrics.IncStaleBook()
		return
	}
	if update.Instrument == schema.InstrumentPrimary {
		start := time.Now()
		t.quoter.OnBookUpdate(snap)
		t.metrics.ObserveQuoteEval(time.Since(start).Nanoseconds())
	}
}

// OnTradeTicks records public trade activity. Ticks are informational;
// they never move exposure or quotes directly.
func (t *Trader) OnTradeTicks(update schema.BookUpdate) {
	t.ticks[update.Instrument]++
}

// Ticks returns the number of trade-tick updates seen for an instrument.
func (t *Trader) Ticks(instrument schema.Instrument) uint64 {
	return t.ticks[instrument]
}

// OnOrderFilled applies a confirmed fill: the order table first, then
// exposure, then the hedge if the fill was on the primary instrument. A
// fill for an untracked id is the expected race with a cancel in flight
// and changes nothing.
func (t *Trader) OnOrderFilled(fill schema.OrderFilled) {
	o, err := t.orders.OnFill(fill)
	if err != nil {
		logs.Infof("fill for order %d not found, volume %d at %d", fill.OrderID, fill.Volume, fill.Price)
		t.metrics.IncUnknownOrder()
		return
	}

	position := t.ledger.ApplyFill(o.Instrument, o.Side, fill.Volume)
	if t.journal != nil {
		t.journal.RecordFill(o, fill.Price, fill.Volume, position)
	}
	logs.Infof("order %d filled %d at %d, %s position %d", o.ID, fill.Volume, fill.Price, o.Instrument, position)

	if o.Instrument == schema.InstrumentPrimary {
		hedgeID := t.hedges.OnPrimaryFill(o.Side, fill.Price, fill.Volume)
		logs.Infof("hedge %d sent for order %d", hedgeID, o.ID)
	}
}

// OnOrderStatus applies a venue status update. Unknown ids are expected
// after cancels and terminal statuses already applied.
func (t *Trader) OnOrderStatus(status schema.OrderStatus) {
	o, err := t.orders.OnStatus(status)
	if err != nil {
		t.metrics.IncUnknownOrder()
		return
	}
	if o.State.Terminal() {
		logs.Infof("order %d %s, filled %d, fees %d", o.ID, o.State, status.FillVolume, status.Fees)
	}
}

// OnHedgeFilled applies a hedge outcome through the reconciler and
// journals confirmed executions.
func (t *Trader) OnHedgeFilled(fill schema.HedgeFilled) {
	res, err := t.hedges.OnHedgeFilled(fill)
	if err != nil {
		logs.Infof("hedge %d not found", fill.OrderID)
		t.metrics.IncUnknownHedge()
		return
	}

	switch {
	case res.Abandoned:
		logs.Errorf("hedge %d failed, budget exhausted, %d lots unhedged", res.Hedge.ID, res.Hedge.Remaining)
	case res.Failed:
		logs.Warnf("hedge %d failed, retrying as %d", res.Hedge.ID, res.RetryID)
	default:
		position := t.ledger.Position(schema.InstrumentSecondary)
		if t.journal != nil {
			t.journal.RecordHedge(res.Hedge, fill.Price, fill.Volume, position)
		}
		logs.Infof("hedge %d filled %d at %d, secondary position %d", res.Hedge.ID, fill.Volume, fill.Price, position)
		if res.UnwindID != 0 {
			logs.Infof("unwind %d sent for hedge %d", res.UnwindID, res.Hedge.ID)
		}
	}
}

// OnVenueError handles a rejection. Order id zero is a venue-level
// diagnostic with no corrective action; a known order id retires the
// order so its volume stops counting against the limit.
func (t *Trader) OnVenueError(venueErr schema.VenueError) {
	if venueErr.OrderID == 0 {
		logs.Errorf("venue error: %s", venueErr.Message)
		return
	}
	if o, ok := t.orders.OnError(venueErr.OrderID); ok {
		logs.Errorf("order %d rejected: %s", o.ID, venueErr.Message)
		t.metrics.IncOrderRejected()
		return
	}
	logs.Infof("error for order %d not found: %s", venueErr.OrderID, venueErr.Message)
	t.metrics.IncUnknownOrder()
}

// OnDisconnect notes a dropped session. Reconnection is the session
// layer's job; local state is kept as-is.
func (t *Trader) OnDisconnect() {
	logs.Warn("venue session disconnected")
}
