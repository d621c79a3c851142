package client

import "testing"

func TestHistoryGet(t *testing.T) {
	var h History
	for seq := uint64(1); seq <= 10; seq++ {
		h.Store(Record{Sequence: seq})
	}
	if _, ok := h.Get(0); ok {
		t.Fatalf("sequence 0 must never be found")
	}
	if r, ok := h.Get(7); !ok || r.Sequence != 7 {
		t.Fatalf("expected record 7, got %+v (found=%v)", r, ok)
	}
	if _, ok := h.Get(11); ok {
		t.Fatalf("expected record 11 to be missing")
	}
}

func TestHistoryOverwrite(t *testing.T) {
	var h History
	for seq := uint64(1); seq <= historySize+5; seq++ {
		h.Store(Record{Sequence: seq})
	}
	if _, ok := h.Get(3); ok {
		t.Fatalf("expected record 3 to be overwritten")
	}
	if _, ok := h.Get(historySize + 3); !ok {
		t.Fatalf("expected record %d to be present", historySize+3)
	}
}

func TestHistoryUnacknowledged(t *testing.T) {
	var h History
	for seq := uint64(1); seq <= 5; seq++ {
		h.Store(Record{Sequence: seq})
	}
	pending := h.Unacknowledged(2)
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending records, got %d", len(pending))
	}
	for i, r := range pending {
		if r.Sequence != uint64(i+3) {
			t.Fatalf("expected record %d at index %d, got %d", i+3, i, r.Sequence)
		}
	}
	if len(h.Unacknowledged(5)) != 0 {
		t.Fatalf("expected nothing pending once everything is acknowledged")
	}
}
