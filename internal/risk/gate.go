package risk

import (
	"errors"

	"main/internal/schema"
)

var (
	ErrOffTick       = errors.New("price not aligned to tick size")
	ErrOutsideBand   = errors.New("price outside the valid band")
	ErrPositionLimit = errors.New("order would breach the position limit")
)

// Config fixes the venue trading rules the strategy must respect.
type Config struct {
	PositionLimit schema.Volume `json:"positionLimit"`
	LotSize       schema.Volume `json:"lotSize"`
	TickSize      schema.Price  `json:"tickSize"`
	MinBid        schema.Price  `json:"minBid"`
	MaxAsk        schema.Price  `json:"maxAsk"`
}

// Gate performs pre-trade checks against venue rules and exposure. Band
// edges are resolved once: minimum bid rounds up to the nearest tick,
// maximum ask rounds down.
type Gate struct {
	cfg    Config
	minBid schema.Price
	maxAsk schema.Price
}

// NewGate resolves the tick-aligned price band from the raw venue limits.
func NewGate(cfg Config) *Gate {
	g := &Gate{cfg: cfg, minBid: cfg.MinBid, maxAsk: cfg.MaxAsk}
	if cfg.TickSize > 0 {
		g.minBid = (cfg.MinBid + cfg.TickSize) / cfg.TickSize * cfg.TickSize
		g.maxAsk = cfg.MaxAsk / cfg.TickSize * cfg.TickSize
	}
	return g
}

// TickSize returns the venue price increment.
func (g *Gate) TickSize() schema.Price {
	return g.cfg.TickSize
}

// PositionLimit returns the symmetric exposure bound.
func (g *Gate) PositionLimit() schema.Volume {
	return g.cfg.PositionLimit
}

// Band returns the tick-aligned minimum bid and maximum ask.
func (g *Gate) Band() (minBid, maxAsk schema.Price) {
	return g.minBid, g.maxAsk
}

// WorstTick returns the most aggressive price still inside the band for
// a side: the edge a marketable order is allowed to cross to.
func (g *Gate) WorstTick(side schema.Side) schema.Price {
	if side == schema.SideBuy {
		return g.maxAsk
	}
	return g.minBid
}

// ClampToBand pulls a price back inside the valid band.
func (g *Gate) ClampToBand(price schema.Price) schema.Price {
	if price < g.minBid {
		return g.minBid
	}
	if price > g.maxAsk {
		return g.maxAsk
	}
	return price
}

// Check validates an order against tick alignment, the price band and
// the position limit, given current exposure and the remaining volume of
// resting same-direction orders.
func (g *Gate) Check(side schema.Side, price schema.Price, volume, position, resting schema.Volume) error {
	if g.cfg.TickSize > 0 && price%g.cfg.TickSize != 0 {
		return ErrOffTick
	}
	if price < g.minBid || price > g.maxAsk {
		return ErrOutsideBand
	}
	if ClampVolume(side, volume, position, resting, g.cfg.PositionLimit) < volume {
		return ErrPositionLimit
	}
	return nil
}

// ClampVolume shrinks a desired volume so that exposure plus all resting
// same-direction volume cannot exceed the limit if everything fills.
func ClampVolume(side schema.Side, desired, position, resting, limit schema.Volume) schema.Volume {
	var room schema.Volume
	switch side {
	case schema.SideBuy:
		room = limit - position - resting
	case schema.SideSell:
		room = limit + position - resting
	default:
		return 0
	}
	if room <= 0 {
		return 0
	}
	if desired > room {
		return room
	}
	return desired
}
