package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"main/internal/bus"
	"main/internal/chaos"
	"main/internal/core"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/schema"
)

// chaos replays a recorded event WAL through a fault-injection engine
// and checks that the decision core survives drops, duplicates and
// reordering without corrupting its state.
func main() {
	dir := flag.String("dir", "testdata/wal", "WAL directory")
	prefix := flag.String("prefix", "", "WAL file prefix (default: wal)")
	configPath := flag.String("config", "", "Path to JSON config")
	seed := flag.Int64("seed", 0, "Chaos seed (0=time-based)")
	dropRate := flag.Float64("drop-rate", 0.05, "Event drop probability [0, 1]")
	dupRate := flag.Float64("duplicate-rate", 0.05, "Event duplicate probability [0, 1]")
	reorder := flag.Int("reorder-window", 4, "Reorder window size (1=no reordering)")
	maxDelay := flag.Duration("max-delay", 0, "Maximum injected receive delay")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	flag.Parse()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	engine, err := chaos.NewEngine(chaos.Config{
		Seed:          *seed,
		DropRate:      *dropRate,
		DuplicateRate: *dupRate,
		ReorderWindow: *reorder,
		MaxDelay:      *maxDelay,
	})
	if err != nil {
		log.Fatalf("chaos init failed: %v", err)
	}

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:             *dir,
		FilePrefix:      *prefix,
		DisableChecksum: *noChecksum,
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

	var in, out int
	start := time.Now()
	err = pb.Run(context.Background(), func(header schema.EventHeader, payload []byte) error {
		in++
		cp := make([]byte, len(payload))
		copy(cp, payload)
		for _, ev := range engine.Process(bus.Event{Header: header, Payload: cp}) {
			out++
			trader.Dispatch(ev)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("playback run failed: %v", err)
	}
	for _, ev := range engine.Flush() {
		out++
		trader.Dispatch(ev)
	}

	snap := metrics.Snapshot()
	fmt.Printf("replayed %d events as %d after chaos in %s\n", in, out, time.Since(start).Round(time.Millisecond))
	fmt.Printf("primary position: %d, secondary position: %d\n",
		trader.Ledger().Position(schema.InstrumentPrimary), trader.Ledger().Position(schema.InstrumentSecondary))
	fmt.Printf("stale books dropped: %d\n", snap.StaleBooks)
	fmt.Printf("unknown orders: %d, unknown hedges: %d\n", snap.UnknownOrders, snap.UnknownHedges)
	fmt.Printf("live orders: %d\n", trader.Orders().Len())
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

// nullVenue swallows commands so chaos runs never trade.
type nullVenue struct{}

func (nullVenue) InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan) {
}
func (nullVenue) AmendOrderVolume(id uint64, volume schema.Volume) {}
func (nullVenue) CancelOrder(id uint64)                            {}
func (nullVenue) InsertHedgeOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume) {
}
