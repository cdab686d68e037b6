package venue

import (
	"context"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/schema"
	"main/pkg/exception"
)

// Client is the websocket session to the venue. Commands go out as JSON
// requests; events come back on the subscription stream and are encoded
// into the bus for the strategy loop, with an optional WAL tap.
type Client struct {
	wss     *ws.WebSocket
	cfg     ops.VenueConfig
	queue   *bus.Queue
	wal     *recorder.Writer
	metrics *obs.Metrics

	symbols map[string]schema.Instrument
	seq     uint64
}

// NewClient creates a venue session for the configured endpoint.
func NewClient(ctx context.Context, cfg ops.VenueConfig, queue *bus.Queue, metrics *obs.Metrics) *Client {
	return &Client{
		wss:     ws.New(ctx, cfg.URL),
		cfg:     cfg,
		queue:   queue,
		metrics: metrics,
		symbols: map[string]schema.Instrument{
			cfg.Primary:   schema.InstrumentPrimary,
			cfg.Secondary: schema.InstrumentSecondary,
		},
	}
}

// WithRecorder taps every inbound event into a WAL writer.
func (c *Client) WithRecorder(w *recorder.Writer) *Client {
	c.wal = w
	return c
}

// Close shuts the session down.
func (c *Client) Close() {
	c.wss.Close()
}

// Start opens the websocket connection.
func (c *Client) Start(ctx context.Context) error {
	if err := c.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}

	return nil
}

// Subscribe registers for both instrument streams and waits for the
// venue's acknowledgement.
func (c *Client) Subscribe(ctx context.Context) error {
	if err := c.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, client *ws.WebSocket) error {
			payload := subscribeRequest{
				ID:      venueWsMethodSubscribeID,
				Method:  "subscribe",
				Symbols: []string{c.cfg.Primary, c.cfg.Secondary},
			}
			if err := client.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[subscribeResponse](m)
			if !ok || resp.ID != venueWsMethodSubscribeID {
				return false, nil
			}

			if resp.Status != "success" {
				return false, errors.Wrapf(exception.ErrSubscribeRejected, "status: %s", resp.Status)
			}
			return true, nil
		},
	}); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

// InsertOrder sends a new-order command. Command transmission is
// fire-and-forget; rejections come back as error events.
func (c *Client) InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan) {
	c.send(insertRequest{
		Type:          "insert",
		ClientOrderID: id,
		Symbol:        c.cfg.Primary,
		Side:          wireSide(side),
		Price:         centsToWire(price),
		Volume:        int64(volume),
		Lifespan:      wireLifespan(lifespan),
	})
}

// AmendOrderVolume sends a volume amendment for a live order.
func (c *Client) AmendOrderVolume(id uint64, volume schema.Volume) {
	c.send(amendRequest{Type: "amend", ClientOrderID: id, Volume: int64(volume)})
}

// CancelOrder sends a cancel command.
func (c *Client) CancelOrder(id uint64) {
	c.send(cancelRequest{Type: "cancel", ClientOrderID: id})
}

// InsertHedgeOrder sends a hedge command on the secondary instrument.
func (c *Client) InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume) {
	c.send(hedgeRequest{
		Type:          "hedge",
		ClientOrderID: id,
		Symbol:        c.cfg.Secondary,
		Side:          wireSide(side),
		Price:         centsToWire(price),
		Volume:        int64(volume),
	})
}

func (c *Client) send(payload any) {
	if err := c.wss.WriteJSON(payload); err != nil {
		logs.Errorf("write command, err: %+v", err)
	}
}

// Observe decodes the inbound stream into bus events until the context
// is done or the session drops. A dropped session publishes a
// disconnect event before returning.
func (c *Client) Observe(ctx context.Context) (unsubscribe func()) {
	ch, cancel := c.wss.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					logs.Warnf("%+v", exception.ErrConnectionClose)
					c.publish(schema.EventDisconnect, 0, 0, nil)
					return
				}

				c.handle(m)
			}
		}
	}()

	return cancel
}

func (c *Client) handle(m ws.Message) {
	env, ok := ws.ReadMessage[envelope](m)
	if !ok {
		return
	}

	switch env.Type {
	case msgTypeOrderBook, msgTypeTradeTicks:
		msg, ok := ws.ReadMessage[bookMessage](m)
		if !ok {
			return
		}
		instrument, ok := c.symbols[msg.Symbol]
		if !ok {
			logs.Errorf("%+v", errors.Wrapf(exception.ErrUnknownSymbol, "symbol: %s", msg.Symbol))
			return
		}
		update, err := msg.toUpdate(instrument)
		if err != nil {
			logs.Errorf("decode %s, err: %+v", env.Type, err)
			return
		}
		eventType := schema.EventOrderBook
		if env.Type == msgTypeTradeTicks {
			eventType = schema.EventTradeTicks
		}
		c.publish(eventType, msg.Sequence, msg.Time, codec.EncodeBookUpdate(nil, update))
	case msgTypeOrderFilled, msgTypeHedgeFilled:
		msg, ok := ws.ReadMessage[fillMessage](m)
		if !ok {
			return
		}
		price, err := wireToCents(msg.Price)
		if err != nil {
			logs.Errorf("decode %s price, err: %+v", env.Type, err)
			return
		}
		fill := schema.OrderFilled{
			OrderID: msg.ClientOrderID,
			Price:   price,
			Volume:  schema.Volume(msg.Volume),
		}
		if env.Type == msgTypeHedgeFilled {
			hedge := schema.HedgeFilled(fill)
			c.publish(schema.EventHedgeFilled, 0, msg.Time, codec.EncodeHedgeFilled(nil, hedge))
			return
		}
		c.publish(schema.EventOrderFilled, 0, msg.Time, codec.EncodeOrderFilled(nil, fill))
	case msgTypeOrderStatus:
		msg, ok := ws.ReadMessage[statusMessage](m)
		if !ok {
			return
		}
		status := schema.OrderStatus{
			OrderID:         msg.ClientOrderID,
			FillVolume:      schema.Volume(msg.FillVolume),
			RemainingVolume: schema.Volume(msg.RemainingVolume),
			Fees:            schema.Fee(msg.Fees),
		}
		c.publish(schema.EventOrderStatus, 0, msg.Time, codec.EncodeOrderStatus(nil, status))
	case msgTypeError:
		msg, ok := ws.ReadMessage[errorMessage](m)
		if !ok {
			return
		}
		venueErr := schema.VenueError{OrderID: msg.ClientOrderID, Message: msg.Message}
		c.publish(schema.EventVenueError, 0, 0, codec.EncodeVenueError(nil, venueErr))
	}
}

func (c *Client) publish(eventType schema.EventType, seq uint64, tsEvent int64, payload []byte) {
	if seq == 0 {
		c.seq++
		seq = c.seq
	}
	header := schema.NewHeader(eventType, 0, seq, tsEvent, time.Now().UnixNano())
	if c.wal != nil {
		if err := c.wal.TryAppend(header, payload); err != nil {
			logs.Errorf("wal append, err: %+v", err)
		}
	}
	if err := c.queue.TryPublish(bus.Event{Header: header, Payload: payload}); err != nil {
		c.metrics.IncQueueDrop()
		logs.Errorf("publish %d event, err: %+v", eventType, err)
	}
}
