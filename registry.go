package tally

import (
	"sync"

	"github.com/perlin-network/tally/clock"
	"github.com/perlin-network/tally/log"
	"github.com/perlin-network/tally/store"
	"github.com/pkg/errors"
)

// Registry owns every subject's balance history: one ledger per account,
// plus the singleton total-supply ledger. It is the only writer to any of
// them. Reads take the read lock and never mutate ledger state.
type Registry struct {
	sync.RWMutex

	kv store.KV

	capacity int

	ledgers map[AccountID]*Ledger
	supply  *Ledger

	index   map[AccountID]uint64
	nextIdx uint64

	dirty       map[AccountID]struct{}
	supplyDirty bool
}

// NewRegistry loads previously committed ledgers out of kv. capacity applies
// to ledgers created from here on; loaded ledgers keep the capacity they
// were written with.
func NewRegistry(kv store.KV, capacity int) (*Registry, error) {
	if capacity < 1 {
		capacity = 1
	}

	r := &Registry{
		kv:       kv,
		capacity: capacity,
		ledgers:  make(map[AccountID]*Ledger),
		index:    make(map[AccountID]uint64),
		dirty:    make(map[AccountID]struct{}),
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	if r.supply == nil {
		r.supply = NewLedger(capacity)
	}

	return r, nil
}

// Record applies a balance change for one account at the given clock
// reading, creating the account's ledger on first touch. The caller is
// expected to invoke it exactly once per account per balance-changing event.
func (r *Registry) Record(id AccountID, newBalance uint64, now uint32) {
	r.Lock()
	defer r.Unlock()

	r.record(id, newBalance, now)
}

// RecordTotalSupply applies a change of the aggregate supply at the given
// clock reading, independently of any per-account ledger.
func (r *Registry) RecordTotalSupply(newSupply uint64, now uint32) {
	r.Lock()
	defer r.Unlock()

	r.recordSupply(newSupply, now)
}

func (r *Registry) record(id AccountID, newBalance uint64, now uint32) {
	ledger, ok := r.ledgers[id]
	if !ok {
		ledger = NewLedger(r.capacity)

		r.ledgers[id] = ledger
		r.index[id] = r.nextIdx
		r.nextIdx++
	}

	ledger.Record(newBalance, now)
	r.dirty[id] = struct{}{}

	logger := log.Accounts("balance_updated")
	log.Info(&logger, AccountBalanceUpdated{AccountID: id, Balance: newBalance, Timestamp: now})
}

func (r *Registry) recordSupply(newSupply uint64, now uint32) {
	r.supply.Record(newSupply, now)
	r.supplyDirty = true

	logger := log.Supply("total_supply_updated")
	log.Info(&logger, TotalSupplyUpdated{Supply: newSupply, Timestamp: now})
}

func (r *Registry) balanceOf(id AccountID) uint64 {
	if ledger, ok := r.ledgers[id]; ok {
		return ledger.Balance()
	}

	return 0
}

// Balance returns an account's present balance. Unknown accounts hold zero.
func (r *Registry) Balance(id AccountID) uint64 {
	r.RLock()
	defer r.RUnlock()

	return r.balanceOf(id)
}

// TotalSupply returns the present aggregate supply.
func (r *Registry) TotalSupply() uint64 {
	r.RLock()
	defer r.RUnlock()

	return r.supply.Balance()
}

// LastUpdated returns the clock reading of an account's newest observation.
// The second return is false for accounts with no history.
func (r *Registry) LastUpdated(id AccountID) (uint32, bool) {
	r.RLock()
	defer r.RUnlock()

	ledger, ok := r.ledgers[id]
	if !ok {
		return 0, false
	}

	newest, ok := ledger.Newest()
	if !ok {
		return 0, false
	}

	return newest.Timestamp, true
}

// NumAccounts returns the number of accounts that have ever held a balance.
func (r *Registry) NumAccounts() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.ledgers)
}

// BalanceAt returns the balance an account held at the given moment. An
// account with no ledger yields zero; that is not an error.
func (r *Registry) BalanceAt(id AccountID, target, now uint32) uint64 {
	r.RLock()
	defer r.RUnlock()

	ledger, ok := r.ledgers[id]
	if !ok {
		return 0
	}

	return ledger.BalanceAt(target, now)
}

// BalancesAt answers a point query for every moment in targets.
func (r *Registry) BalancesAt(id AccountID, targets []uint32, now uint32) []uint64 {
	r.RLock()
	defer r.RUnlock()

	ledger, ok := r.ledgers[id]
	if !ok {
		return make([]uint64, len(targets))
	}

	return ledger.BalancesAt(targets, now)
}

// AverageBalanceBetween returns the time-weighted average balance an account
// held over [start, end].
func (r *Registry) AverageBalanceBetween(id AccountID, start, end, now uint32) (uint64, error) {
	r.RLock()
	defer r.RUnlock()

	ledger, ok := r.ledgers[id]
	if !ok {
		if clock.Before(end, start, now) {
			return 0, ErrBadRange
		}

		return 0, nil
	}

	return ledger.AverageBalanceBetween(start, end, now)
}

// AverageBalancesBetween answers a range query for every window formed by
// pairing starts[i] with ends[i].
func (r *Registry) AverageBalancesBetween(id AccountID, starts, ends []uint32, now uint32) ([]uint64, error) {
	r.RLock()
	defer r.RUnlock()

	ledger, ok := r.ledgers[id]
	if !ok {
		if len(starts) != len(ends) {
			return nil, errors.New("must have as many window starts as window ends")
		}

		for i := range starts {
			if clock.Before(ends[i], starts[i], now) {
				return nil, ErrBadRange
			}
		}

		return make([]uint64, len(starts)), nil
	}

	return ledger.AverageBalancesBetween(starts, ends, now)
}

// TotalSupplyAt returns the aggregate supply at the given moment.
func (r *Registry) TotalSupplyAt(target, now uint32) uint64 {
	r.RLock()
	defer r.RUnlock()

	return r.supply.BalanceAt(target, now)
}

// TotalSuppliesAt answers a supply point query for every moment in targets.
func (r *Registry) TotalSuppliesAt(targets []uint32, now uint32) []uint64 {
	r.RLock()
	defer r.RUnlock()

	return r.supply.BalancesAt(targets, now)
}

// AverageTotalSupplyBetween returns the time-weighted average aggregate
// supply over [start, end].
func (r *Registry) AverageTotalSupplyBetween(start, end, now uint32) (uint64, error) {
	r.RLock()
	defer r.RUnlock()

	return r.supply.AverageBalanceBetween(start, end, now)
}

// Commit flushes every ledger written since the last commit into the
// registry's KV through one write batch.
func (r *Registry) Commit() error {
	r.Lock()
	defer r.Unlock()

	if len(r.dirty) == 0 && !r.supplyDirty {
		return nil
	}

	batch := r.kv.NewWriteBatch()
	defer batch.Destroy()

	for id := range r.dirty {
		batchLedger(batch, accountLedgerKey(id), r.ledgers[id])
		batchAccountIndex(batch, r.index[id], id)
	}

	if r.supplyDirty {
		batchLedger(batch, keySupplyLedger[:], r.supply)
	}

	batchAccountsLen(batch, r.nextIdx)

	if err := r.kv.CommitWriteBatch(batch); err != nil {
		return errors.Wrap(err, "registry: failed to commit ledgers")
	}

	r.dirty = make(map[AccountID]struct{})
	r.supplyDirty = false

	return nil
}

func (r *Registry) load() error {
	n, err := loadAccountsLen(r.kv)
	if err != nil {
		return err
	}

	for i := uint64(0); i < n; i++ {
		id, err := loadAccountID(r.kv, i)
		if err != nil {
			return err
		}

		ledger, err := loadLedger(r.kv, accountLedgerKey(id))
		if err != nil {
			return err
		}

		if ledger == nil {
			continue
		}

		r.ledgers[id] = ledger
		r.index[id] = i
	}

	r.nextIdx = n

	supply, err := loadLedger(r.kv, keySupplyLedger[:])
	if err != nil {
		return err
	}

	r.supply = supply

	return nil
}
