package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"main/internal/bus"
	"main/internal/core"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/schema"
)

// replay drives the decision core from a recorded event WAL and reports
// the resulting positions and order activity. Commands go to a null
// venue, so a replay never trades.
func main() {
	dir := flag.String("dir", "testdata/wal", "WAL directory")
	prefix := flag.String("prefix", "", "WAL file prefix (default: wal)")
	speed := flag.Float64("speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	useRecv := flag.Bool("use-recv-time", false, "Use receive timestamp for pacing")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	maxPayload := flag.Int("max-payload", 0, "Max payload size in bytes (0=unlimited)")
	configPath := flag.String("config", "", "Path to JSON config")
	verbose := flag.Bool("verbose", false, "Print every replayed event")
	flag.Parse()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:             *dir,
		FilePrefix:      *prefix,
		Speed:           *speed,
		UseRecvTime:     *useRecv,
		DisableChecksum: *noChecksum,
		MaxPayloadSize:  *maxPayload,
	})
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	metrics := obs.NewMetrics()
	trader := core.NewTrader(core.Config{
		Risk:  loaded.Risk,
		Quote: loaded.Quote,
		Hedge: loaded.Hedge,
	}, nullVenue{}, metrics, nil)

	ctx := context.Background()
	var index int
	err = pb.Run(ctx, func(header schema.EventHeader, payload []byte) error {
		index++
		if *verbose {
			fmt.Printf("%06d seq=%d type=%s ts_event=%d len=%d\n", index, header.Seq, eventTypeName(header.Type), header.TsEvent, len(payload))
		}
		trader.Dispatch(bus.Event{Header: header, Payload: payload})
		return nil
	})
	if err != nil {
		log.Fatalf("playback run failed: %v", err)
	}

	fmt.Printf("replayed %d events\n", index)
	fmt.Printf("primary position: %d\n", trader.Ledger().Position(schema.InstrumentPrimary))
	fmt.Printf("secondary position: %d\n", trader.Ledger().Position(schema.InstrumentSecondary))
	fmt.Printf("live orders: %d\n", trader.Orders().Len())
	snap := metrics.Snapshot()
	fmt.Printf("orders submitted: %d, rejected: %d\n", snap.OrdersSubmitted, snap.OrdersRejected)
	fmt.Printf("stale books: %d, unknown orders: %d, unknown hedges: %d\n", snap.StaleBooks, snap.UnknownOrders, snap.UnknownHedges)
	fmt.Printf("hedge retries: %d, abandoned: %d, unhedged lots: %d\n", snap.HedgeRetries, snap.HedgesAbandoned, snap.UnhedgedVolume)
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

func eventTypeName(t schema.EventType) string {
	switch t {
	case schema.EventOrderBook:
		return "OrderBook"
	case schema.EventTradeTicks:
		return "TradeTicks"
	case schema.EventOrderFilled:
		return "OrderFilled"
	case schema.EventOrderStatus:
		return "OrderStatus"
	case schema.EventHedgeFilled:
		return "HedgeFilled"
	case schema.EventVenueError:
		return "VenueError"
	case schema.EventDisconnect:
		return "Disconnect"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// nullVenue swallows commands so recorded sessions replay without side
// effects.
type nullVenue struct{}

func (nullVenue) InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan) {
}
func (nullVenue) AmendOrderVolume(id uint64, volume schema.Volume) {}
func (nullVenue) CancelOrder(id uint64)                            {}
func (nullVenue) InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume) {
}
