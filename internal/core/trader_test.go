package core

import (
	"testing"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/hedge"
	"main/internal/quote"
	"main/internal/risk"
	"main/internal/schema"
)

type command struct {
	op     string
	id     uint64
	side   schema.Side
	price  schema.Price
	volume schema.Volume
}

type fakeVenue struct {
	commands []command
}

func (v *fakeVenue) InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan) {
	v.commands = append(v.commands, command{op: "insert", id: id, side: side, price: price, volume: volume})
}

func (v *fakeVenue) AmendOrderVolume(id uint64, volume schema.Volume) {
	v.commands = append(v.commands, command{op: "amend", id: id, volume: volume})
}

func (v *fakeVenue) CancelOrder(id uint64) {
	v.commands = append(v.commands, command{op: "cancel", id: id})
}

func (v *fakeVenue) InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume) {
	v.commands = append(v.commands, command{op: "hedge", id: id, side: side, price: price, volume: volume})
}

func (v *fakeVenue) last(t *testing.T, op string) command {
	t.Helper()
	for i := len(v.commands) - 1; i >= 0; i-- {
		if v.commands[i].op == op {
			return v.commands[i]
		}
	}
	t.Fatalf("no %s command issued", op)
	return command{}
}

func testConfig() Config {
	return Config{
		Risk: risk.Config{
			PositionLimit: 100,
			LotSize:       10,
			TickSize:      100,
			MinBid:        1,
			MaxAsk:        2147483647,
		},
		Quote: quote.Config{Volume: 10, ImbalanceThreshold: 0.5},
		Hedge: hedge.Config{RetryBudget: 1},
	}
}

func primaryBook(seq uint64, bestBid, bestAsk schema.Price) schema.BookUpdate {
	update := schema.BookUpdate{Instrument: schema.InstrumentPrimary, Seq: seq}
	update.BidPrices[0] = bestBid
	update.BidVolumes[0] = 50
	update.AskPrices[0] = bestAsk
	update.AskVolumes[0] = 50
	return update
}

func TestFirstBookUpdateBootstrapsQuotes(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderBook(primaryBook(1, 10000, 10100))

	quotes := tr.Orders().Quotes(schema.InstrumentPrimary)
	if len(quotes) != 2 {
		t.Fatalf("quotes: got %d want 2", len(quotes))
	}
	for _, q := range quotes {
		switch q.Side {
		case schema.SideBuy:
			if q.Price > 10000 {
				t.Fatalf("bid must not cross best bid: %+v", q)
			}
		case schema.SideSell:
			if q.Price < 10100 {
				t.Fatalf("ask must not cross best ask: %+v", q)
			}
		}
		if q.Volume != 10 {
			t.Fatalf("quote volume: %+v", q)
		}
	}
}

func TestStaleBookUpdateIsDropped(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderBook(primaryBook(5, 10000, 10100))
	commands := len(venue.commands)
	tr.OnOrderBook(primaryBook(4, 9000, 9100))
	if len(venue.commands) != commands {
		t.Fatal("stale update must not re-quote")
	}
}

func TestPrimaryFillHedgesOppositeSide(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderBook(primaryBook(1, 10000, 10100))
	bid := venue.last(t, "insert")

	tr.OnOrderFilled(schema.OrderFilled{OrderID: bid.id, Price: bid.price, Volume: 10})

	if got := tr.Ledger().Position(schema.InstrumentPrimary); got != 10 {
		t.Fatalf("primary position: got %d want 10", got)
	}
	h := venue.last(t, "hedge")
	if h.side != schema.SideSell || h.volume != 10 {
		t.Fatalf("hedge command: %+v", h)
	}

	tr.OnHedgeFilled(schema.HedgeFilled{OrderID: h.id, Price: h.price, Volume: 10})
	if got := tr.Ledger().Position(schema.InstrumentSecondary); got != -10 {
		t.Fatalf("secondary position: got %d want -10", got)
	}
}

func TestLateFillAfterCancelLeavesStateUntouched(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderFilled(schema.OrderFilled{OrderID: 7, Price: 10000, Volume: 10})

	if got := tr.Ledger().Position(schema.InstrumentPrimary); got != 0 {
		t.Fatalf("untracked fill mutated exposure: %d", got)
	}
	for _, c := range venue.commands {
		if c.op == "hedge" {
			t.Fatal("untracked fill must not hedge")
		}
	}
}

func TestFailedHedgeRetriesThenAbandons(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderBook(primaryBook(1, 10000, 10100))
	bid := venue.last(t, "insert")
	tr.OnOrderFilled(schema.OrderFilled{OrderID: bid.id, Price: bid.price, Volume: 10})

	first := venue.last(t, "hedge")
	tr.OnHedgeFilled(schema.HedgeFilled{OrderID: first.id})

	retry := venue.last(t, "hedge")
	if retry.id == first.id {
		t.Fatal("failed hedge should be re-issued under a fresh id")
	}
	if retry.side != first.side || retry.volume != first.volume {
		t.Fatalf("retry must keep side and original volume: %+v vs %+v", retry, first)
	}

	tr.OnHedgeFilled(schema.HedgeFilled{OrderID: retry.id})
	if got := tr.Ledger().Position(schema.InstrumentSecondary); got != 0 {
		t.Fatalf("failed hedges mutated exposure: %d", got)
	}
}

func TestTerminalStatusIsIdempotent(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderBook(primaryBook(1, 10000, 10100))
	bid := venue.last(t, "insert")

	tr.OnOrderStatus(schema.OrderStatus{OrderID: bid.id, FillVolume: 10, RemainingVolume: 0})
	tr.OnOrderStatus(schema.OrderStatus{OrderID: bid.id, FillVolume: 10, RemainingVolume: 0})

	for _, q := range tr.Orders().Quotes(schema.InstrumentPrimary) {
		if q.ID == bid.id {
			t.Fatal("terminal status should retire the order")
		}
	}
}

func TestVenueErrorRetiresKnownOrder(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	tr.OnOrderBook(primaryBook(1, 10000, 10100))
	bid := venue.last(t, "insert")
	live := tr.Orders().Len()

	tr.OnVenueError(schema.VenueError{OrderID: bid.id, Message: "rejected"})
	if tr.Orders().Len() != live-1 {
		t.Fatal("rejected order should leave the table")
	}

	// Venue-level diagnostics and unknown ids change nothing.
	tr.OnVenueError(schema.VenueError{OrderID: 0, Message: "session warning"})
	tr.OnVenueError(schema.VenueError{OrderID: 999, Message: "rejected"})
	if tr.Orders().Len() != live-1 {
		t.Fatal("diagnostic errors must not mutate the table")
	}
}

func TestDispatchRoutesEncodedEvents(t *testing.T) {
	venue := &fakeVenue{}
	tr := NewTrader(testConfig(), venue, nil, nil)

	payload := codec.EncodeBookUpdate(nil, primaryBook(1, 10000, 10100))
	tr.Dispatch(bus.Event{
		Header:  schema.NewHeader(schema.EventOrderBook, 0, 1, 0, 0),
		Payload: payload,
	})
	if len(tr.Orders().Quotes(schema.InstrumentPrimary)) != 2 {
		t.Fatal("dispatched book update did not quote")
	}

	ticks := codec.EncodeBookUpdate(nil, primaryBook(2, 10000, 10100))
	tr.Dispatch(bus.Event{
		Header:  schema.NewHeader(schema.EventTradeTicks, 0, 2, 0, 0),
		Payload: ticks,
	})
	if tr.Ticks(schema.InstrumentPrimary) != 1 {
		t.Fatal("trade ticks not counted")
	}

	// Truncated payloads are dropped without panicking.
	tr.Dispatch(bus.Event{
		Header:  schema.NewHeader(schema.EventOrderFilled, 0, 3, 0, 0),
		Payload: []byte{1, 2, 3},
	})
}
