package quote

import (
	"testing"

	"main/internal/book"
	"main/internal/ledger"
	"main/internal/oms"
	"main/internal/risk"
	"main/internal/schema"
)

type fakeVenue struct {
	inserts int
	cancels int
}

func (v *fakeVenue) InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan) {
	v.inserts++
}
func (v *fakeVenue) AmendOrderVolume(id uint64, volume schema.Volume) {}
func (v *fakeVenue) CancelOrder(id uint64)                            { v.cancels++ }

type fixture struct {
	venue  *fakeVenue
	gate   *risk.Gate
	ledger *ledger.Ledger
	orders *oms.Manager
	books  *book.Store
	policy *Policy
}

func newFixture(cfg Config) *fixture {
	venue := &fakeVenue{}
	gate := risk.NewGate(risk.Config{
		PositionLimit: 100,
		LotSize:       10,
		TickSize:      100,
		MinBid:        1,
		MaxAsk:        2147483647,
	})
	led := ledger.New(100)
	orders := oms.NewManager(venue)
	books := book.NewStore()
	return &fixture{
		venue:  venue,
		gate:   gate,
		ledger: led,
		orders: orders,
		books:  books,
		policy: NewPolicy(cfg, gate, led, orders, books, nil),
	}
}

func balancedBook(seq uint64, bestBid, bestAsk schema.Price) schema.BookUpdate {
	update := schema.BookUpdate{Instrument: schema.InstrumentPrimary, Seq: seq}
	update.BidPrices[0] = bestBid
	update.BidVolumes[0] = 50
	update.AskPrices[0] = bestAsk
	update.AskVolumes[0] = 50
	return update
}

func (f *fixture) apply(t *testing.T, update schema.BookUpdate) {
	t.Helper()
	snap, ok := f.books.Apply(update)
	if !ok {
		t.Fatalf("book update rejected: %+v", update)
	}
	f.policy.OnBookUpdate(snap)
}

func quoteOn(t *testing.T, f *fixture, side schema.Side) oms.Order {
	t.Helper()
	for _, q := range f.orders.Quotes(schema.InstrumentPrimary) {
		if q.Side == side {
			return q
		}
	}
	t.Fatalf("no live %s quote", side)
	return oms.Order{}
}

func TestBootstrapsBothSidesOneTickInside(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	f.apply(t, balancedBook(1, 10000, 10100))

	bid := quoteOn(t, f, schema.SideBuy)
	ask := quoteOn(t, f, schema.SideSell)
	if bid.Price != 9900 || bid.Volume != 10 {
		t.Fatalf("bid: %+v", bid)
	}
	if ask.Price != 10200 || ask.Volume != 10 {
		t.Fatalf("ask: %+v", ask)
	}
	if bid.Lifespan != schema.LifespanGoodForDay || bid.Purpose != schema.PurposeQuote {
		t.Fatalf("bid attributes: %+v", bid)
	}
}

func TestUnchangedPricesLeaveQuotesAlone(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	f.apply(t, balancedBook(1, 10000, 10100))
	inserts := f.venue.inserts
	f.apply(t, balancedBook(2, 10000, 10100))
	if f.venue.inserts != inserts {
		t.Fatalf("stable book caused churn: %d inserts", f.venue.inserts-inserts)
	}
}

func TestPriceMoveReplacesQuote(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	f.apply(t, balancedBook(1, 10000, 10100))
	oldBid := quoteOn(t, f, schema.SideBuy)
	f.apply(t, balancedBook(2, 10200, 10300))

	bid := quoteOn(t, f, schema.SideBuy)
	if bid.ID == oldBid.ID {
		t.Fatal("replace must issue a fresh id")
	}
	if bid.Price != 10100 {
		t.Fatalf("replaced bid price: got %d want 10100", bid.Price)
	}
	if f.venue.cancels == 0 {
		t.Fatal("replace should cancel the old quote")
	}
}

func TestImbalanceSkewsAwayFromHeavySide(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	update := schema.BookUpdate{Instrument: schema.InstrumentPrimary, Seq: 1}
	update.BidPrices[0] = 10000
	update.BidVolumes[0] = 90
	update.AskPrices[0] = 10100
	update.AskVolumes[0] = 10
	f.apply(t, update)

	bid := quoteOn(t, f, schema.SideBuy)
	ask := quoteOn(t, f, schema.SideSell)
	if bid.Price != 10000 {
		t.Fatalf("heavy-bid book should quote at best bid, got %d", bid.Price)
	}
	if ask.Price != 10300 {
		t.Fatalf("heavy-bid book should widen the ask two ticks, got %d", ask.Price)
	}
}

func TestThrottleShrinksTowardLimitAndCancelsAtLimit(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	// Half the limit long: buy size halves, sell keeps full size.
	f.ledger.ApplyFill(schema.InstrumentPrimary, schema.SideBuy, 50)
	f.apply(t, balancedBook(1, 10000, 10100))
	bid := quoteOn(t, f, schema.SideBuy)
	ask := quoteOn(t, f, schema.SideSell)
	if bid.Volume != 5 {
		t.Fatalf("throttled bid volume: got %d want 5", bid.Volume)
	}
	if ask.Volume != 10 {
		t.Fatalf("favorable ask volume: got %d want 10", ask.Volume)
	}

	// At the limit the bid is pulled instead of resubmitted.
	f.ledger.ApplyFill(schema.InstrumentPrimary, schema.SideBuy, 50)
	f.apply(t, balancedBook(2, 10200, 10300))
	for _, q := range f.orders.Quotes(schema.InstrumentPrimary) {
		if q.Side == schema.SideBuy {
			t.Fatalf("bid should be cancelled at the limit: %+v", q)
		}
	}
	if quoteOn(t, f, schema.SideSell).Volume != 10 {
		t.Fatal("sell quote should survive at full size")
	}
}

func TestOneSidedBookSkipsEvaluation(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	update := schema.BookUpdate{Instrument: schema.InstrumentPrimary, Seq: 1}
	update.BidPrices[0] = 10000
	update.BidVolumes[0] = 50
	f.apply(t, update)

	if f.orders.Len() != 0 {
		t.Fatalf("one-sided book should not quote, got %d orders", f.orders.Len())
	}
}

func TestSecondaryBookUpdateDoesNotQuote(t *testing.T) {
	f := newFixture(Config{Volume: 10, ImbalanceThreshold: 0.5})

	update := balancedBook(1, 10000, 10100)
	update.Instrument = schema.InstrumentSecondary
	f.apply(t, update)

	if f.orders.Len() != 0 {
		t.Fatal("secondary updates must not trigger quoting")
	}
}
