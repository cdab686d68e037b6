package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/core"
	"main/internal/journal"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/venue"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	queueSize := flag.Int("queue-size", 4096, "Event queue capacity")
	profileAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *profileAddr,
			Tags: map[string]string{
				"env": "local",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	metrics := obs.NewMetrics()

	var jnl core.Journal
	if loaded.Journal.Enabled {
		j, err := journal.Open(loaded.Journal)
		if err != nil {
			log.Fatalf("journal open failed: %v", err)
		}
		defer j.Close()
		jnl = j
	}

	queue := bus.NewQueue(*queueSize)
	client := venue.NewClient(ctx, loaded.Venue, queue, metrics)

	if loaded.Record.Enabled {
		writer, err := recorder.NewWriter(recorder.DefaultConfig(loaded.Record.Dir))
		if err != nil {
			log.Fatalf("wal init failed: %v", err)
		}
		if err := writer.Start(ctx); err != nil {
			log.Fatalf("wal start failed: %v", err)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logs.Errorf("wal close, err: %+v", err)
			}
		}()
		client = client.WithRecorder(writer)
	}

	if err := client.Start(ctx); err != nil {
		log.Fatalf("venue session failed: %v", err)
	}
	defer client.Close()
	if err := client.Subscribe(ctx); err != nil {
		log.Fatalf("venue subscribe failed: %v", err)
	}

	trader := core.NewTrader(core.Config{
		Risk:  loaded.Risk,
		Quote: loaded.Quote,
		Hedge: loaded.Hedge,
	}, client, metrics, jnl)

	unsubscribe := client.Observe(ctx)
	defer unsubscribe()

	logs.Infof("trading %s against %s on %s", loaded.Venue.Primary, loaded.Venue.Secondary, loaded.Venue.URL)
	trader.Run(ctx, queue)

	snap := metrics.Snapshot()
	logs.Infof("session done: %d orders submitted, %d rejected, %d hedge retries, %d lots unhedged",
		snap.OrdersSubmitted, snap.OrdersRejected, snap.HedgeRetries, snap.UnhedgedVolume)
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
