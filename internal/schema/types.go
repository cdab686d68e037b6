package schema

// Price is in cents. Valid order prices are multiples of the venue tick size.
type Price int64

// Volume is in lots.
type Volume int64

// Fee is in cents. Negative values are rebates.
type Fee int64

// TopLevelCount is the book depth the venue reports per side.
const TopLevelCount = 5

// Instrument identifies one of the two tradable instruments.
type Instrument uint16

const (
	InstrumentUnknown Instrument = iota
	// InstrumentPrimary is quoted on both sides.
	InstrumentPrimary
	// InstrumentSecondary is traded only to hedge primary exposure.
	InstrumentSecondary
)

func (i Instrument) String() string {
	switch i {
	case InstrumentPrimary:
		return "primary"
	case InstrumentSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Side describes order direction.
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Opposite returns the other direction.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnknown
	}
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Lifespan describes how long an order may rest at the venue.
type Lifespan uint16

const (
	LifespanUnknown Lifespan = iota
	// LifespanGoodForDay rests in the book until filled or cancelled.
	LifespanGoodForDay
	// LifespanFillAndKill executes against available liquidity and
	// cancels any remainder.
	LifespanFillAndKill
)

func (l Lifespan) String() string {
	switch l {
	case LifespanGoodForDay:
		return "good_for_day"
	case LifespanFillAndKill:
		return "fill_and_kill"
	default:
		return "unknown"
	}
}

// Purpose tags why the strategy created an order.
type Purpose uint16

const (
	PurposeUnknown Purpose = iota
	// PurposeQuote is a resting two-sided quote on the primary.
	PurposeQuote
	// PurposeHedge offsets primary exposure on the secondary.
	PurposeHedge
	// PurposeUnwind reduces primary exposure after a completed hedge.
	PurposeUnwind
)

func (p Purpose) String() string {
	switch p {
	case PurposeQuote:
		return "quote"
	case PurposeHedge:
		return "hedge"
	case PurposeUnwind:
		return "unwind"
	default:
		return "unknown"
	}
}
