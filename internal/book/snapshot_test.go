package book

import (
	"testing"

	"main/internal/schema"
)

func primaryUpdate(seq uint64, bestBid, bestAsk schema.Price) schema.BookUpdate {
	update := schema.BookUpdate{Instrument: schema.InstrumentPrimary, Seq: seq}
	update.BidPrices[0] = bestBid
	update.BidVolumes[0] = 40
	update.AskPrices[0] = bestAsk
	update.AskVolumes[0] = 25
	return update
}

func TestStoreRejectsStaleSequence(t *testing.T) {
	st := NewStore()

	if _, ok := st.Apply(primaryUpdate(5, 10000, 10100)); !ok {
		t.Fatal("first update should be accepted")
	}
	if _, ok := st.Apply(primaryUpdate(5, 9900, 10200)); ok {
		t.Fatal("duplicate sequence should be ignored")
	}
	if _, ok := st.Apply(primaryUpdate(4, 9900, 10200)); ok {
		t.Fatal("stale sequence should be ignored")
	}

	snap, ok := st.Snapshot(schema.InstrumentPrimary)
	if !ok {
		t.Fatal("snapshot missing")
	}
	if snap.BestBid().Price != 10000 || snap.BestAsk().Price != 10100 {
		t.Fatalf("stale update mutated snapshot: %+v", snap)
	}

	if _, ok := st.Apply(primaryUpdate(6, 9900, 10200)); !ok {
		t.Fatal("newer sequence should be accepted")
	}
}

func TestSideVolumes(t *testing.T) {
	update := primaryUpdate(1, 10000, 10100)
	update.BidVolumes[1] = 10
	update.AskVolumes[3] = 5

	snap := FromUpdate(update)
	bid, ask := snap.SideVolumes()
	if bid != 50 || ask != 30 {
		t.Fatalf("side volumes: got bid=%d ask=%d want bid=50 ask=30", bid, ask)
	}
}
