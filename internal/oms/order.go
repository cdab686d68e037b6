package oms

import "main/internal/schema"

// State tracks the lifecycle of an order.
type State uint16

const (
	StateUnknown State = iota
	// StatePending is submitted but not yet acknowledged by the venue.
	StatePending
	// StateResting sits in the venue book awaiting a match.
	StateResting
	StatePartFilled
	StateFilled
	StateCancelled
	StateRejected
)

// Terminal reports whether the state retires the order id.
func (s State) Terminal() bool {
	switch s {
	case StateFilled, StateCancelled, StateRejected:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResting:
		return "resting"
	case StatePartFilled:
		return "part_filled"
	case StateFilled:
		return "filled"
	case StateCancelled:
		return "cancelled"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Order is the strategy's record of one command-level venue order.
type Order struct {
	ID         uint64
	Instrument schema.Instrument
	Side       schema.Side
	Price      schema.Price
	Volume     schema.Volume // original requested volume
	Remaining  schema.Volume
	Lifespan   schema.Lifespan
	Purpose    schema.Purpose
	State      State
}
