package tally

import (
	"github.com/perlin-network/tally/clock"
)

// Ledger is a bounded circular history of balance observations for a single
// subject: one account, or the total supply. Slots are laid out physically
// as a ring; the chronologically oldest populated slot sits at index next
// once the ring is full, and at index 0 before that.
//
// A ledger is only ever mutated through Record. Methods assume the caller
// serializes access; Registry provides the locking for shared use.
type Ledger struct {
	history []Observation
	next    int
	size    int
	balance uint64
}

// NewLedger returns an empty ledger retaining up to capacity observations.
func NewLedger(capacity int) *Ledger {
	if capacity < 1 {
		capacity = 1
	}

	return &Ledger{history: make([]Observation, capacity)}
}

// Balance returns the subject's present balance.
func (l *Ledger) Balance() uint64 {
	return l.balance
}

// Len returns the number of populated observations.
func (l *Ledger) Len() int {
	return l.size
}

// Cap returns the fixed capacity of the history.
func (l *Ledger) Cap() int {
	return len(l.history)
}

// Oldest returns the chronologically oldest stored observation, which is the
// eviction candidate once the ring is full.
func (l *Ledger) Oldest() (Observation, bool) {
	if l.size == 0 {
		return Observation{}, false
	}

	return l.history[l.oldestIndex()], true
}

// Newest returns the most recently written observation.
func (l *Ledger) Newest() (Observation, bool) {
	if l.size == 0 {
		return Observation{}, false
	}

	return l.history[l.newestIndex()], true
}

func (l *Ledger) oldestIndex() int {
	if l.size == len(l.history) {
		return l.next
	}

	return 0
}

func (l *Ledger) newestIndex() int {
	return (l.next + len(l.history) - 1) % len(l.history)
}

// at returns the i-th stored observation in chronological order, mapping the
// logical index through the ring.
func (l *Ledger) at(i int) Observation {
	return l.history[(l.oldestIndex()+i)%len(l.history)]
}

// Record applies one balance change at the given clock reading.
//
// The outgoing balance's contribution is weighted by the time it was held:
// the accumulator grows by elapsed multiplied by the balance in effect
// before this change. A write landing on the same clock reading as the
// newest observation overwrites it in place without moving the cursors, so a
// balance acquired and returned within a single reading is held for zero
// elapsed time and adds nothing to the integral.
func (l *Ledger) Record(newBalance uint64, now uint32) {
	if l.size == 0 {
		l.history[0] = Observation{Timestamp: now}
		l.next = 1 % len(l.history)
		l.size = 1
		l.balance = newBalance

		return
	}

	newest := l.history[l.newestIndex()]

	elapsed := clock.Elapsed(newest.Timestamp, now)
	cumulative := newest.Cumulative + uint64(elapsed)*l.balance

	if elapsed == 0 {
		l.history[l.newestIndex()] = Observation{Cumulative: cumulative, Timestamp: now}
	} else {
		l.history[l.next] = Observation{Cumulative: cumulative, Timestamp: now}
		l.next = (l.next + 1) % len(l.history)

		if l.size < len(l.history) {
			l.size++
		}
	}

	l.balance = newBalance
}
