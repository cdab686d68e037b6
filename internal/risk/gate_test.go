package risk

import (
	"errors"
	"testing"

	"main/internal/schema"
)

func testGate() *Gate {
	return NewGate(Config{
		PositionLimit: 100,
		LotSize:       10,
		TickSize:      100,
		MinBid:        1,
		MaxAsk:        2147483647,
	})
}

func TestBandRoundsToNearestTick(t *testing.T) {
	g := testGate()
	minBid, maxAsk := g.Band()
	if minBid != 100 {
		t.Fatalf("min bid: got %d want 100", minBid)
	}
	if maxAsk != 2147483600 {
		t.Fatalf("max ask: got %d want 2147483600", maxAsk)
	}
	if g.WorstTick(schema.SideBuy) != maxAsk {
		t.Fatalf("buy worst tick should be the band's ask edge")
	}
	if g.WorstTick(schema.SideSell) != minBid {
		t.Fatalf("sell worst tick should be the band's bid edge")
	}
}

func TestCheckRejectsOffTickAndOutsideBand(t *testing.T) {
	g := testGate()
	if err := g.Check(schema.SideBuy, 10050, 10, 0, 0); !errors.Is(err, ErrOffTick) {
		t.Fatalf("off-tick price: got %v want ErrOffTick", err)
	}
	if err := g.Check(schema.SideSell, 0, 10, 0, 0); !errors.Is(err, ErrOutsideBand) {
		t.Fatalf("below band: got %v want ErrOutsideBand", err)
	}
	if err := g.Check(schema.SideBuy, 10000, 10, 0, 0); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}
}

func TestClampVolumeCountsRestingVolume(t *testing.T) {
	// limit=100, position=95, no resting buys: a desired 20 clamps to 5.
	if got := ClampVolume(schema.SideBuy, 20, 95, 0, 100); got != 5 {
		t.Fatalf("clamp: got %d want 5", got)
	}
	// Resting same-direction volume eats into the remaining room.
	if got := ClampVolume(schema.SideBuy, 20, 80, 15, 100); got != 5 {
		t.Fatalf("clamp with resting: got %d want 5", got)
	}
	if got := ClampVolume(schema.SideSell, 20, 95, 0, 100); got != 20 {
		t.Fatalf("favorable side should not clamp: got %d want 20", got)
	}
	if got := ClampVolume(schema.SideBuy, 20, 100, 0, 100); got != 0 {
		t.Fatalf("at the limit: got %d want 0", got)
	}
}
