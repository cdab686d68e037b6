package ledger

import (
	"testing"

	"main/internal/schema"
)

func TestApplyFillSignsExposure(t *testing.T) {
	l := New(100)

	if got := l.ApplyFill(schema.InstrumentPrimary, schema.SideBuy, 30); got != 30 {
		t.Fatalf("position after buy: got %d want 30", got)
	}
	if got := l.ApplyFill(schema.InstrumentPrimary, schema.SideSell, 50); got != -20 {
		t.Fatalf("position after sell: got %d want -20", got)
	}
	if got := l.Position(schema.InstrumentSecondary); got != 0 {
		t.Fatalf("secondary position should be untouched, got %d", got)
	}
}

func TestHeadroomClampsAtZero(t *testing.T) {
	l := New(100)
	l.ApplyFill(schema.InstrumentPrimary, schema.SideBuy, 95)

	if got := l.Headroom(schema.InstrumentPrimary, schema.SideBuy); got != 5 {
		t.Fatalf("buy headroom: got %d want 5", got)
	}
	if got := l.Headroom(schema.InstrumentPrimary, schema.SideSell); got != 195 {
		t.Fatalf("sell headroom: got %d want 195", got)
	}

	l.ApplyFill(schema.InstrumentPrimary, schema.SideBuy, 10)
	if got := l.Headroom(schema.InstrumentPrimary, schema.SideBuy); got != 0 {
		t.Fatalf("buy headroom beyond the limit: got %d want 0", got)
	}
}
