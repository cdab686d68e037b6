package book

import "main/internal/schema"

// Level is one price level of a book side.
type Level struct {
	Price  schema.Price
	Volume schema.Volume
}

// Snapshot is the latest top-N view of one instrument's book. Only the
// freshest snapshot per instrument is retained; history is never stored.
type Snapshot struct {
	Instrument schema.Instrument
	Seq        uint64
	Bids       [schema.TopLevelCount]Level
	Asks       [schema.TopLevelCount]Level
}

// FromUpdate converts a boundary book update into a snapshot.
func FromUpdate(update schema.BookUpdate) Snapshot {
	snap := Snapshot{Instrument: update.Instrument, Seq: update.Seq}
	for i := 0; i < schema.TopLevelCount; i++ {
		snap.Bids[i] = Level{Price: update.BidPrices[i], Volume: update.BidVolumes[i]}
		snap.Asks[i] = Level{Price: update.AskPrices[i], Volume: update.AskVolumes[i]}
	}
	return snap
}

// BestBid returns the top bid level. A zero price means the side is empty.
func (s Snapshot) BestBid() Level {
	return s.Bids[0]
}

// BestAsk returns the top ask level. A zero price means the side is empty.
func (s Snapshot) BestAsk() Level {
	return s.Asks[0]
}

// SideVolumes sums the visible volume on each side.
func (s Snapshot) SideVolumes() (bid, ask schema.Volume) {
	for i := 0; i < schema.TopLevelCount; i++ {
		bid += s.Bids[i].Volume
		ask += s.Asks[i].Volume
	}
	return bid, ask
}

// Store retains the freshest snapshot per instrument.
type Store struct {
	snaps map[schema.Instrument]Snapshot
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{snaps: make(map[schema.Instrument]Snapshot, 2)}
}

// Apply replaces the stored snapshot unless the update's sequence number
// is stale or a duplicate. It returns the resulting snapshot and whether
// the update was accepted.
func (st *Store) Apply(update schema.BookUpdate) (Snapshot, bool) {
	prev, ok := st.snaps[update.Instrument]
	if ok && update.Seq <= prev.Seq {
		return prev, false
	}
	snap := FromUpdate(update)
	st.snaps[update.Instrument] = snap
	return snap, true
}

// Snapshot returns the stored snapshot for an instrument.
func (st *Store) Snapshot(instrument schema.Instrument) (Snapshot, bool) {
	snap, ok := st.snaps[instrument]
	return snap, ok
}
