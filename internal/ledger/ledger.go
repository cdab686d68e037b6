package ledger

import "main/internal/schema"

// Ledger holds signed net exposure per instrument. Exposure changes only
// when a confirmed fill is applied, never when an order is submitted.
type Ledger struct {
	limit     schema.Volume
	positions map[schema.Instrument]schema.Volume
}

// New creates an empty ledger bounded by a symmetric position limit.
func New(limit schema.Volume) *Ledger {
	return &Ledger{
		limit:     limit,
		positions: make(map[schema.Instrument]schema.Volume, 2),
	}
}

// ApplyFill adjusts exposure by a confirmed fill and returns the new
// position for the instrument.
func (l *Ledger) ApplyFill(instrument schema.Instrument, side schema.Side, volume schema.Volume) schema.Volume {
	current := l.positions[instrument]
	switch side {
	case schema.SideBuy:
		current += volume
	case schema.SideSell:
		current -= volume
	}
	l.positions[instrument] = current
	return current
}

// Position returns the current signed exposure for an instrument.
func (l *Ledger) Position(instrument schema.Instrument) schema.Volume {
	return l.positions[instrument]
}

// Limit returns the configured symmetric position limit.
func (l *Ledger) Limit() schema.Volume {
	return l.limit
}

// Headroom returns how many more lots could trade in the given direction
// before |exposure| would exceed the limit.
func (l *Ledger) Headroom(instrument schema.Instrument, side schema.Side) schema.Volume {
	pos := l.positions[instrument]
	var room schema.Volume
	switch side {
	case schema.SideBuy:
		room = l.limit - pos
	case schema.SideSell:
		room = l.limit + pos
	}
	if room < 0 {
		return 0
	}
	return room
}
