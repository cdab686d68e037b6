package core

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/schema"
)

// Dispatch decodes one event and routes it to its handler. Malformed
// payloads are logged and dropped; the loop keeps running on best-effort
// state.
func (t *Trader) Dispatch(e bus.Event) {
	t.metrics.CountEvent(e.Header.Type)
	if e.Header.TsEvent != 0 {
		t.metrics.ObserveEventLatency(time.Now().UnixNano() - e.Header.TsEvent)
	}

	switch e.Header.Type {
	case schema.EventOrderBook:
		update, ok := codec.DecodeBookUpdate(e.Payload)
		if !ok {
			logs.Errorf("malformed book update, %d bytes", len(e.Payload))
			return
		}
		t.OnOrderBook(update)
	case schema.EventTradeTicks:
		update, ok := codec.DecodeBookUpdate(e.Payload)
		if !ok {
			logs.Errorf("malformed trade ticks, %d bytes", len(e.Payload))
			return
		}
		t.OnTradeTicks(update)
	case schema.EventOrderFilled:
		fill, ok := codec.DecodeOrderFilled(e.Payload)
		if !ok {
			logs.Errorf("malformed fill, %d bytes", len(e.Payload))
			return
		}
		t.OnOrderFilled(fill)
	case schema.EventOrderStatus:
		status, ok := codec.DecodeOrderStatus(e.Payload)
		if !ok {
			logs.Errorf("malformed status, %d bytes", len(e.Payload))
			return
		}
		t.OnOrderStatus(status)
	case schema.EventHedgeFilled:
		fill, ok := codec.DecodeHedgeFilled(e.Payload)
		if !ok {
			logs.Errorf("malformed hedge fill, %d bytes", len(e.Payload))
			return
		}
		t.OnHedgeFilled(fill)
	case schema.EventVenueError:
		venueErr, ok := codec.DecodeVenueError(e.Payload)
		if !ok {
			logs.Errorf("malformed venue error, %d bytes", len(e.Payload))
			return
		}
		t.OnVenueError(venueErr)
	case schema.EventDisconnect:
		t.OnDisconnect()
	default:
		logs.Errorf("unknown event type %d", e.Header.Type)
	}
}

// Run drains the queue on the calling goroutine until the context is
// cancelled or the queue closes.
func (t *Trader) Run(ctx context.Context, queue *bus.Queue) {
	queue.Run(ctx, t.Dispatch)
}
