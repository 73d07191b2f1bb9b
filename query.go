package tally

import (
	"github.com/perlin-network/tally/clock"
	"github.com/pkg/errors"
)

// BalanceAt returns the balance the ledger's subject held at the given
// moment. now is the present clock reading and anchors every wraparound
// comparison; target must not be later than now.
//
// A moment at or after the newest observation is answered with the present
// balance, a moment before the oldest observation with zero, and anything in
// between by recovering the constant balance held across the bracketing pair
// of observations.
func (l *Ledger) BalanceAt(target, now uint32) uint64 {
	if l.size == 0 {
		return 0
	}

	newest := l.history[l.newestIndex()]
	if clock.AtOrAfter(target, newest.Timestamp, now) {
		return l.balance
	}

	oldest := l.history[l.oldestIndex()]
	if clock.Before(target, oldest.Timestamp, now) {
		return 0
	}

	before, after := l.bracket(target, now)

	return clock.Sub(after.Cumulative, before.Cumulative) /
		uint64(clock.Elapsed(before.Timestamp, after.Timestamp))
}

// BalancesAt answers a point query for every moment in targets.
func (l *Ledger) BalancesAt(targets []uint32, now uint32) []uint64 {
	balances := make([]uint64, len(targets))

	for i, target := range targets {
		balances[i] = l.BalanceAt(target, now)
	}

	return balances
}

// AverageBalanceBetween returns the time-weighted average balance held over
// [start, end]. The window may reach before the subject's first observation,
// in which case the pre-history portion is weighted as zero, and past the
// newest observation, in which case the present balance is extrapolated.
//
// A window whose start lies chronologically after its end is a caller
// contract violation and is rejected before the reader runs.
func (l *Ledger) AverageBalanceBetween(start, end, now uint32) (uint64, error) {
	if clock.Before(end, start, now) {
		return 0, ErrBadRange
	}

	if start == end {
		return l.BalanceAt(start, now), nil
	}

	total := clock.Sub(l.cumulativeAt(end, now), l.cumulativeAt(start, now))

	return total / uint64(clock.Elapsed(start, end)), nil
}

// AverageBalancesBetween answers a range query for every window formed by
// pairing starts[i] with ends[i].
func (l *Ledger) AverageBalancesBetween(starts, ends []uint32, now uint32) ([]uint64, error) {
	if len(starts) != len(ends) {
		return nil, errors.New("must have as many window starts as window ends")
	}

	averages := make([]uint64, len(starts))

	for i := range starts {
		avg, err := l.AverageBalanceBetween(starts[i], ends[i], now)
		if err != nil {
			return nil, err
		}

		averages[i] = avg
	}

	return averages, nil
}

// cumulativeAt reconstructs the value the cumulative accumulator had, or
// would have had, at the given moment. Moments past the newest observation
// extrapolate with the present balance; moments before the oldest return the
// oldest's accumulator unchanged, so that no time before the recorded
// history ever contributes weight.
func (l *Ledger) cumulativeAt(t, now uint32) uint64 {
	if l.size == 0 {
		return 0
	}

	newest := l.history[l.newestIndex()]
	if clock.AtOrAfter(t, newest.Timestamp, now) {
		return newest.Cumulative + uint64(clock.Elapsed(newest.Timestamp, t))*l.balance
	}

	oldest := l.history[l.oldestIndex()]
	if clock.Before(t, oldest.Timestamp, now) {
		return oldest.Cumulative
	}

	before, after := l.bracket(t, now)

	held := clock.Sub(after.Cumulative, before.Cumulative) /
		uint64(clock.Elapsed(before.Timestamp, after.Timestamp))

	return before.Cumulative + uint64(clock.Elapsed(before.Timestamp, t))*held
}

// bracket binary-searches for the pair of adjacent observations surrounding
// t: the latest observation at or before t, and the earliest one strictly
// after it. The caller has already ruled out moments outside
// [oldest, newest), so both always exist. The search walks logical
// chronological indices and maps them onto ring slots through at; it never
// assumes array order equals time order.
func (l *Ledger) bracket(t, now uint32) (Observation, Observation) {
	lo, hi := 0, l.size-1

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2

		if clock.AtOrAfter(t, l.at(mid).Timestamp, now) {
			lo = mid
		} else {
			hi = mid
		}
	}

	return l.at(lo), l.at(hi)
}
