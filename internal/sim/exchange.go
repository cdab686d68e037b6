package sim

import (
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/schema"
)

type restingOrder struct {
	id        uint64
	side      schema.Side
	price     schema.Price
	remaining schema.Volume
}

// Exchange is an in-process venue for paper trading and scenario tests.
// Commands execute synchronously against the latest published books and
// the resulting events are queued exactly as the live session would
// queue them.
type Exchange struct {
	queue    *bus.Queue
	books    map[schema.Instrument]schema.BookUpdate
	resting  map[uint64]*restingOrder
	seq      map[schema.Instrument]uint64
	eventSeq uint64

	// FailHedges makes every hedge come back with the venue's
	// could-not-execute sentinel.
	FailHedges bool
}

// NewExchange creates an exchange publishing into the given queue.
func NewExchange(queue *bus.Queue) *Exchange {
	return &Exchange{
		queue:   queue,
		books:   make(map[schema.Instrument]schema.BookUpdate),
		resting: make(map[uint64]*restingOrder),
		seq:     make(map[schema.Instrument]uint64),
	}
}

// PublishBook installs a new top-of-book for an instrument, fills any
// resting orders the new book crosses, and emits the book event.
func (e *Exchange) PublishBook(instrument schema.Instrument, bestBid, bestAsk schema.Price, volume schema.Volume) {
	e.seq[instrument]++
	update := schema.BookUpdate{Instrument: instrument, Seq: e.seq[instrument]}
	if bestBid > 0 {
		update.BidPrices[0] = bestBid
		update.BidVolumes[0] = volume
	}
	if bestAsk > 0 {
		update.AskPrices[0] = bestAsk
		update.AskVolumes[0] = volume
	}
	e.books[instrument] = update
	e.matchResting(update)
	e.publish(schema.EventOrderBook, update.Seq, codec.EncodeBookUpdate(nil, update))
}

func (e *Exchange) matchResting(update schema.BookUpdate) {
	bestBid := update.BidPrices[0]
	bestAsk := update.AskPrices[0]
	for id, o := range e.resting {
		var crossed bool
		switch o.side {
		case schema.SideBuy:
			crossed = bestAsk > 0 && bestAsk <= o.price
		case schema.SideSell:
			crossed = bestBid > 0 && bestBid >= o.price
		}
		if !crossed {
			continue
		}
		delete(e.resting, id)
		e.fillOrder(id, o.price, o.remaining, 0)
	}
}

// InsertOrder executes or rests a new order against the current book.
func (e *Exchange) InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan) {
	book := e.books[schema.InstrumentPrimary]
	var execPrice schema.Price
	switch side {
	case schema.SideBuy:
		if ask := book.AskPrices[0]; ask > 0 && ask <= price {
			execPrice = ask
		}
	case schema.SideSell:
		if bid := book.BidPrices[0]; bid > 0 && bid >= price {
			execPrice = bid
		}
	}

	if execPrice > 0 {
		e.fillOrder(id, execPrice, volume, 0)
		return
	}
	if lifespan == schema.LifespanFillAndKill {
		e.sendStatus(id, 0, 0)
		return
	}
	e.resting[id] = &restingOrder{id: id, side: side, price: price, remaining: volume}
	e.sendStatus(id, 0, volume)
}

// AmendOrderVolume shrinks or grows a resting order.
func (e *Exchange) AmendOrderVolume(id uint64, volume schema.Volume) {
	o, ok := e.resting[id]
	if !ok {
		e.sendError(id, "amend: order not found")
		return
	}
	o.remaining = volume
	e.sendStatus(id, 0, volume)
}

// CancelOrder removes a resting order and confirms with a terminal
// status. Cancels for unknown ids are silently ignored, matching a
// venue that already executed the order.
func (e *Exchange) CancelOrder(id uint64) {
	if _, ok := e.resting[id]; !ok {
		return
	}
	delete(e.resting, id)
	e.sendStatus(id, 0, 0)
}

// InsertHedgeOrder executes the hedge at the secondary book's best
// opposite price, or reports the could-not-execute sentinel.
func (e *Exchange) InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume) {
	book := e.books[schema.InstrumentSecondary]
	var execPrice schema.Price
	switch side {
	case schema.SideBuy:
		if ask := book.AskPrices[0]; ask > 0 && ask <= price {
			execPrice = ask
		}
	case schema.SideSell:
		if bid := book.BidPrices[0]; bid > 0 && bid >= price {
			execPrice = bid
		}
	}

	if e.FailHedges || execPrice == 0 {
		e.sendHedge(id, 0, 0)
		return
	}
	e.sendHedge(id, execPrice, volume)
}

func (e *Exchange) fillOrder(id uint64, price schema.Price, volume schema.Volume, remaining schema.Volume) {
	fill := schema.OrderFilled{OrderID: id, Price: price, Volume: volume}
	e.publish(schema.EventOrderFilled, 0, codec.EncodeOrderFilled(nil, fill))
	e.sendStatus(id, volume, remaining)
}

func (e *Exchange) sendStatus(id uint64, fillVolume, remaining schema.Volume) {
	status := schema.OrderStatus{OrderID: id, FillVolume: fillVolume, RemainingVolume: remaining}
	e.publish(schema.EventOrderStatus, 0, codec.EncodeOrderStatus(nil, status))
}

func (e *Exchange) sendHedge(id uint64, price schema.Price, volume schema.Volume) {
	fill := schema.HedgeFilled{OrderID: id, Price: price, Volume: volume}
	e.publish(schema.EventHedgeFilled, 0, codec.EncodeHedgeFilled(nil, fill))
}

func (e *Exchange) sendError(id uint64, message string) {
	venueErr := schema.VenueError{OrderID: id, Message: message}
	e.publish(schema.EventVenueError, 0, codec.EncodeVenueError(nil, venueErr))
}

func (e *Exchange) publish(eventType schema.EventType, seq uint64, payload []byte) {
	if seq == 0 {
		e.eventSeq++
		seq = e.eventSeq
	}
	now := time.Now().UnixNano()
	header := schema.NewHeader(eventType, 1, seq, now, now)
	if err := e.queue.TryPublish(bus.Event{Header: header, Payload: payload}); err != nil {
		logs.Errorf("sim publish %d event, err: %+v", eventType, err)
	}
}
