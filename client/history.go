package client

import "github.com/oomph-ac/netmove/movement"

const historySize = 64

// Record stores an input alongside the state predicted after applying it.
type Record struct {
	Sequence  uint64
	Input     movement.Input
	Predicted movement.State
}

// History is a ring buffer of recent inputs and their predicted outcomes, indexed by sequence.
type History struct {
	records [historySize]Record
	nextSeq uint64
}

// Store saves a record.
func (h *History) Store(r Record) {
	h.records[r.Sequence%historySize] = r
	h.nextSeq = r.Sequence + 1
}

// Get retrieves a stored record by sequence number. Returns false if not found or if the slot has
// been overwritten.
func (h *History) Get(seq uint64) (Record, bool) {
	r := h.records[seq%historySize]
	if r.Sequence != seq || seq == 0 {
		return Record{}, false
	}
	return r, true
}

// Unacknowledged returns all stored records with sequence numbers greater than lastAcked, oldest
// first.
func (h *History) Unacknowledged(lastAcked uint64) []Record {
	var out []Record
	for seq := lastAcked + 1; seq < h.nextSeq; seq++ {
		if r, ok := h.Get(seq); ok {
			out = append(out, r)
		}
	}
	return out
}
