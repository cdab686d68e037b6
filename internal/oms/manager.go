package oms

import (
	"errors"
	"sort"

	"main/internal/schema"
)

var (
	ErrUnknownOrder    = errors.New("order not found")
	ErrDegenerateOrder = errors.New("order has zero price or volume")
)

// KeepCurrent leaves a price or volume unchanged in Replace.
const KeepCurrent = 0

// Venue is the subset of boundary commands the manager issues.
type Venue interface {
	InsertOrder(id uint64, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan)
	AmendOrderVolume(id uint64, volume schema.Volume)
	CancelOrder(id uint64)
}

// Manager owns the tracked-order table and mediates every command and
// callback for the strategy's own orders. Ids are issued monotonically
// and never reused once an order reaches a terminal state.
type Manager struct {
	venue  Venue
	nextID uint64
	orders map[uint64]*Order
}

// NewManager creates a manager with an empty order table.
func NewManager(venue Venue) *Manager {
	return &Manager{
		venue:  venue,
		orders: make(map[uint64]*Order),
	}
}

// NextID allocates a fresh client order id.
func (m *Manager) NextID() uint64 {
	m.nextID++
	return m.nextID
}

// Submit records a new order as pending and forwards the insert command.
// Degenerate requests consume no id and never reach the venue.
func (m *Manager) Submit(instrument schema.Instrument, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan, purpose schema.Purpose) (uint64, error) {
	if price == 0 || volume == 0 {
		return 0, ErrDegenerateOrder
	}
	id := m.NextID()
	m.orders[id] = &Order{
		ID:         id,
		Instrument: instrument,
		Side:       side,
		Price:      price,
		Volume:     volume,
		Remaining:  volume,
		Lifespan:   lifespan,
		Purpose:    purpose,
		State:      StatePending,
	}
	m.venue.InsertOrder(id, side, price, volume, lifespan)
	return id, nil
}

// Amend updates the order volume and forwards the amend command. The
// venue does not support price amendment; use Replace for that.
func (m *Manager) Amend(id uint64, volume schema.Volume) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	o.Volume = volume
	if o.Remaining > volume {
		o.Remaining = volume
	}
	m.venue.AmendOrderVolume(id, volume)
	return nil
}

// Replace cancels the order and resubmits it with merged attributes,
// returning the new id. Pass KeepCurrent to keep the existing price or
// volume. The cancel command is always issued before the new insert, so
// the order is never live under two ids.
func (m *Manager) Replace(id uint64, price schema.Price, volume schema.Volume) (uint64, error) {
	o, ok := m.orders[id]
	if !ok {
		return 0, ErrUnknownOrder
	}
	next := *o
	if price != KeepCurrent {
		next.Price = price
	}
	if volume != KeepCurrent {
		next.Volume = volume
	}
	if err := m.Cancel(id); err != nil {
		return 0, err
	}
	return m.Submit(next.Instrument, next.Side, next.Price, next.Volume, next.Lifespan, next.Purpose)
}

// Cancel forwards a cancel command and removes the local record
// immediately, before the venue confirms, so the id is never reused for
// a half-cancelled order. Late callbacks for the id report not-found.
func (m *Manager) Cancel(id uint64) error {
	if _, ok := m.orders[id]; !ok {
		return ErrUnknownOrder
	}
	delete(m.orders, id)
	m.venue.CancelOrder(id)
	return nil
}

// OnStatus applies a status callback and returns the updated order.
// RemainingVolume of zero is terminal and retires the id.
func (m *Manager) OnStatus(status schema.OrderStatus) (Order, error) {
	o, ok := m.orders[status.OrderID]
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	if status.RemainingVolume == 0 {
		o.Remaining = 0
		if status.FillVolume >= o.Volume && o.Volume > 0 {
			o.State = StateFilled
		} else {
			o.State = StateCancelled
		}
		delete(m.orders, o.ID)
		return *o, nil
	}
	o.Remaining = status.RemainingVolume
	if status.FillVolume > 0 {
		o.State = StatePartFilled
	} else {
		o.State = StateResting
	}
	return *o, nil
}

// OnFill applies a fill callback and returns the updated order snapshot.
// Remaining volume never goes negative; reaching zero retires the id.
func (m *Manager) OnFill(fill schema.OrderFilled) (Order, error) {
	o, ok := m.orders[fill.OrderID]
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	o.Remaining -= fill.Volume
	if o.Remaining <= 0 {
		o.Remaining = 0
		o.State = StateFilled
		delete(m.orders, o.ID)
	} else {
		o.State = StatePartFilled
	}
	return *o, nil
}

// OnError retires a known order as if a terminal status had arrived, so
// rejected orders do not leak in the table.
func (m *Manager) OnError(id uint64) (Order, bool) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, false
	}
	o.Remaining = 0
	o.State = StateRejected
	delete(m.orders, id)
	return *o, true
}

// Order returns the tracked order for an id.
func (m *Manager) Order(id uint64) (Order, bool) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Len returns the number of live orders.
func (m *Manager) Len() int {
	return len(m.orders)
}

// RestingVolume sums the remaining volume of live orders on one side of
// an instrument.
func (m *Manager) RestingVolume(instrument schema.Instrument, side schema.Side) schema.Volume {
	var total schema.Volume
	for _, o := range m.orders {
		if o.Instrument == instrument && o.Side == side {
			total += o.Remaining
		}
	}
	return total
}

// Quotes returns the live quote-purpose orders for an instrument,
// ordered by id for deterministic reconciliation.
func (m *Manager) Quotes(instrument schema.Instrument) []Order {
	var quotes []Order
	for _, o := range m.orders {
		if o.Instrument == instrument && o.Purpose == schema.PurposeQuote {
			quotes = append(quotes, *o)
		}
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].ID < quotes[j].ID })
	return quotes
}
