package schema

// SchemaVersion is the current event schema version.
const SchemaVersion uint16 = 1

// EventType defines the category of a boundary event.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventOrderBook
	EventTradeTicks
	EventOrderFilled
	EventOrderStatus
	EventHedgeFilled
	EventVenueError
	EventDisconnect
)

// EventHeader is the common metadata attached to every event.
type EventHeader struct {
	Type    EventType
	Version uint16
	Source  uint16
	Flags   uint16
	Seq     uint64
	TsEvent int64
	TsRecv  int64
}

// NewHeader builds a header with the current schema version.
func NewHeader(eventType EventType, source uint16, seq uint64, tsEvent, tsRecv int64) EventHeader {
	return EventHeader{
		Type:    eventType,
		Version: SchemaVersion,
		Source:  source,
		Seq:     seq,
		TsEvent: tsEvent,
		TsRecv:  tsRecv,
	}
}

// BookUpdate is the payload for EventOrderBook and EventTradeTicks.
// Seq is the venue sequence number for the instrument's stream; levels
// beyond the available depth are zero.
type BookUpdate struct {
	Instrument Instrument
	Seq        uint64
	AskPrices  [TopLevelCount]Price
	AskVolumes [TopLevelCount]Volume
	BidPrices  [TopLevelCount]Price
	BidVolumes [TopLevelCount]Volume
}

// OrderFilled is the payload for EventOrderFilled. Volume is the number
// of lots filled at Price in this execution.
type OrderFilled struct {
	OrderID uint64
	Price   Price
	Volume  Volume
}

// OrderStatus is the payload for EventOrderStatus. RemainingVolume of
// zero signals a terminal state, including cancellation.
type OrderStatus struct {
	OrderID         uint64
	FillVolume      Volume
	RemainingVolume Volume
	Fees            Fee
}

// HedgeFilled is the payload for EventHedgeFilled. Price and Volume both
// zero is the venue's sentinel for a hedge that could not execute.
type HedgeFilled struct {
	OrderID uint64
	Price   Price
	Volume  Volume
}

// VenueError is the payload for EventVenueError. OrderID of zero means
// the error is venue-level rather than order-specific.
type VenueError struct {
	OrderID uint64
	Message string
}
