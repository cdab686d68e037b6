package mdg

import (
	"fmt"
	"math/rand"

	"main/internal/schema"
)

// Config shapes the synthetic market.
type Config struct {
	Seed int64
	// Mid is the starting mid price in cents.
	Mid schema.Price
	// Spread is the quoted primary spread in cents.
	Spread schema.Price
	// Tick is the price increment of the random walk.
	Tick schema.Price
	// Depth is the book volume per side in lots.
	Depth schema.Volume
	// Basis widens the secondary instrument's book around the same mid.
	Basis schema.Price
}

// Tick is one synthetic top-of-book pair: the primary book and the
// correlated secondary book around the same mid.
type Tick struct {
	Mid                        schema.Price
	PrimaryBid, PrimaryAsk     schema.Price
	SecondaryBid, SecondaryAsk schema.Price
	Depth                      schema.Volume
}

// Generator produces a random-walk market for paper trading. The walk
// moves the mid by at most one tick per step and never lets it reach
// the bottom of the price band.
type Generator struct {
	cfg Config
	rng *rand.Rand
	mid schema.Price
}

// NewGenerator validates the config and seeds the walk.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Mid <= 0 {
		return nil, fmt.Errorf("mid must be > 0")
	}
	if cfg.Tick <= 0 {
		return nil, fmt.Errorf("tick must be > 0")
	}
	if cfg.Spread <= 0 {
		return nil, fmt.Errorf("spread must be > 0")
	}
	if cfg.Depth <= 0 {
		return nil, fmt.Errorf("depth must be > 0")
	}
	if cfg.Basis < 0 {
		return nil, fmt.Errorf("basis must be >= 0")
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		mid: cfg.Mid,
	}, nil
}

// Next advances the walk one step and returns both books.
func (g *Generator) Next() Tick {
	step := schema.Price(g.rng.Int63n(3)-1) * g.cfg.Tick
	g.mid += step
	if floor := g.cfg.Tick * 2; g.mid < floor {
		g.mid = floor
	}

	half := g.cfg.Spread / 2
	return Tick{
		Mid:          g.mid,
		PrimaryBid:   g.mid - half,
		PrimaryAsk:   g.mid + half,
		SecondaryBid: g.mid - half - g.cfg.Basis,
		SecondaryAsk: g.mid + half + g.cfg.Basis,
		Depth:        g.cfg.Depth,
	}
}
