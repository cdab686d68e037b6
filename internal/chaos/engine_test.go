package chaos

import (
	"testing"

	"main/internal/bus"
	"main/internal/schema"
)

func events(n int) []bus.Event {
	out := make([]bus.Event, n)
	for i := range out {
		out[i] = bus.Event{Header: schema.NewHeader(schema.EventOrderBook, 0, uint64(i+1), 0, 0)}
	}
	return out
}

func TestDropRateOneDropsEverything(t *testing.T) {
	e, err := NewEngine(Config{Seed: 1, DropRate: 1})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for _, ev := range events(10) {
		if out := e.Process(ev); len(out) != 0 {
			t.Fatalf("expected drop, got %d events", len(out))
		}
	}
}

func TestReorderPreservesEveryEvent(t *testing.T) {
	e, err := NewEngine(Config{Seed: 7, ReorderWindow: 4})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	seen := make(map[uint64]bool)
	in := events(20)
	for _, ev := range in {
		for _, out := range e.Process(ev) {
			seen[out.Header.Seq] = true
		}
	}
	for _, out := range e.Flush() {
		seen[out.Header.Seq] = true
	}
	if len(seen) != len(in) {
		t.Fatalf("events lost: got %d want %d", len(seen), len(in))
	}
}

func TestSeededRunsAreDeterministic(t *testing.T) {
	run := func() []uint64 {
		e, err := NewEngine(Config{Seed: 42, DropRate: 0.3, DuplicateRate: 0.2, ReorderWindow: 3})
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		var seqs []uint64
		for _, ev := range events(50) {
			for _, out := range e.Process(ev) {
				seqs = append(seqs, out.Header.Seq)
			}
		}
		for _, out := range e.Flush() {
			seqs = append(seqs, out.Header.Seq)
		}
		return seqs
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs diverged: %d vs %d events", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at %d: %d vs %d", i, a[i], b[i])
		}
	}
}
