package chaos

import (
	"fmt"
	"math/rand"
	"time"

	"main/internal/bus"
)

// Config controls the fault mix applied to the stream.
type Config struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	ReorderWindow int
	MaxDelay      time.Duration
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("dropRate must be between 0 and 1")
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return fmt.Errorf("duplicateRate must be between 0 and 1")
	}
	if c.ReorderWindow <= 0 {
		return fmt.Errorf("reorderWindow must be >= 1")
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("maxDelay must be >= 0")
	}
	return nil
}

// Engine perturbs an event stream with drops, duplicates, bounded
// reordering and receive-time delay, for verifying that the decision
// core degrades gracefully on an imperfect feed. A fixed seed makes a
// run reproducible.
type Engine struct {
	cfg    Config
	rng    *rand.Rand
	window []bus.Event
}

// NewEngine validates the config and seeds the fault source.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Engine{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Process applies the fault mix to one event. It returns zero events
// when the event was dropped or is held back in the reorder window,
// and may return the same event twice when duplicated.
func (e *Engine) Process(ev bus.Event) []bus.Event {
	if e == nil {
		return []bus.Event{ev}
	}
	if e.cfg.DropRate > 0 && e.rng.Float64() < e.cfg.DropRate {
		return nil
	}
	ev = e.delay(ev)
	if e.cfg.ReorderWindow <= 1 {
		return e.emit(ev)
	}
	e.window = append(e.window, ev)
	if len(e.window) < e.cfg.ReorderWindow {
		return nil
	}
	return e.emit(e.popRandom())
}

// Flush drains the reorder window after the input stream ends.
func (e *Engine) Flush() []bus.Event {
	if e == nil || len(e.window) == 0 {
		return nil
	}
	out := make([]bus.Event, 0, len(e.window))
	for len(e.window) > 0 {
		out = append(out, e.emit(e.popRandom())...)
	}
	return out
}

func (e *Engine) popRandom() bus.Event {
	idx := e.rng.Intn(len(e.window))
	ev := e.window[idx]
	e.window = append(e.window[:idx], e.window[idx+1:]...)
	return ev
}

func (e *Engine) emit(ev bus.Event) []bus.Event {
	out := []bus.Event{ev}
	if e.cfg.DuplicateRate > 0 && e.rng.Float64() < e.cfg.DuplicateRate {
		out = append(out, ev)
	}
	return out
}

// delay pushes the receive timestamp forward by a random amount, as a
// slow transport would.
func (e *Engine) delay(ev bus.Event) bus.Event {
	if e.cfg.MaxDelay <= 0 {
		return ev
	}
	d := time.Duration(e.rng.Int63n(e.cfg.MaxDelay.Nanoseconds() + 1))
	if d == 0 {
		return ev
	}
	if ev.Header.TsRecv > 0 {
		ev.Header.TsRecv += int64(d)
		return ev
	}
	if ev.Header.TsEvent > 0 {
		ev.Header.TsRecv = ev.Header.TsEvent + int64(d)
	}
	return ev
}
