package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"main/internal/bus"
	"main/internal/core"
	"main/internal/mdg"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/schema"
	"main/internal/sim"
)

// paper runs the decision core against the in-process exchange on a
// random-walk market, so a strategy configuration can be exercised
// without a venue connection.
func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	ticks := flag.Int("ticks", 1000, "Number of market ticks to simulate")
	seed := flag.Int64("seed", 1, "Random walk seed")
	midStart := flag.Int64("mid", 10000, "Starting mid price in cents")
	spread := flag.Int64("spread", 100, "Quoted spread in cents")
	depth := flag.Int64("depth", 50, "Book volume per side in lots")
	basis := flag.Int64("basis", 100, "Extra secondary spread in cents")
	hedgeFail := flag.Float64("hedge-fail", 0, "Probability a hedge fails [0, 1]")
	flag.Parse()

	if *ticks <= 0 {
		log.Fatalf("ticks must be > 0")
	}
	if *hedgeFail < 0 || *hedgeFail > 1 {
		log.Fatalf("hedge-fail must be in [0, 1]")
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	market, err := mdg.NewGenerator(mdg.Config{
		Seed:   *seed,
		Mid:    schema.Price(*midStart),
		Spread: schema.Price(*spread),
		Tick:   loaded.Risk.TickSize,
		Depth:  schema.Volume(*depth),
		Basis:  schema.Price(*basis),
	})
	if err != nil {
		log.Fatalf("market init failed: %v", err)
	}

	queue := bus.NewQueue(4096)
	exchange := sim.NewExchange(queue)
	metrics := obs.NewMetrics()
	trader := core.NewTrader(core.Config{
		Risk:  loaded.Risk,
		Quote: loaded.Quote,
		Hedge: loaded.Hedge,
	}, exchange, metrics, nil)

	faults := rand.New(rand.NewSource(*seed + 1))
	var lastMid schema.Price
	for i := 0; i < *ticks; i++ {
		tick := market.Next()
		lastMid = tick.Mid

		exchange.FailHedges = faults.Float64() < *hedgeFail
		exchange.PublishBook(schema.InstrumentSecondary, tick.SecondaryBid, tick.SecondaryAsk, tick.Depth*4)
		exchange.PublishBook(schema.InstrumentPrimary, tick.PrimaryBid, tick.PrimaryAsk, tick.Depth)

		for {
			e, ok := queue.TryPop()
			if !ok {
				break
			}
			trader.Dispatch(e)
		}
	}

	primary := trader.Ledger().Position(schema.InstrumentPrimary)
	secondary := trader.Ledger().Position(schema.InstrumentSecondary)
	fmt.Printf("simulated %d ticks, final mid %d\n", *ticks, lastMid)
	fmt.Printf("primary position: %d\n", primary)
	fmt.Printf("secondary position: %d\n", secondary)
	fmt.Printf("net exposure: %d\n", primary+secondary)
	fmt.Printf("live orders: %d\n", trader.Orders().Len())
	snap := metrics.Snapshot()
	fmt.Printf("orders submitted: %d, rejected: %d\n", snap.OrdersSubmitted, snap.OrdersRejected)
	fmt.Printf("hedge retries: %d, abandoned: %d, unhedged lots: %d\n", snap.HedgeRetries, snap.HedgesAbandoned, snap.UnhedgedVolume)
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}
