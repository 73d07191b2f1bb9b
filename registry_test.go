package tally

import (
	"math/rand"
	"testing"

	"github.com/perlin-network/tally/store"
	"github.com/stretchr/testify/assert"
)

func randomAccountID(t testing.TB) AccountID {
	t.Helper()

	var id AccountID

	_, err := rand.Read(id[:])
	assert.NoError(t, err)

	return id
}

func TestRegistryUnknownSubjectIsZero(t *testing.T) {
	db := store.NewInmem()
	defer func() {
		_ = db.Close()
	}()

	r, err := NewRegistry(db, 8)
	assert.NoError(t, err)

	id := randomAccountID(t)

	assert.EqualValues(t, 0, r.Balance(id))
	assert.EqualValues(t, 0, r.BalanceAt(id, 100, 200))

	avg, err := r.AverageBalanceBetween(id, 100, 150, 200)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, avg)

	// A malformed window is still rejected for unknown subjects.
	_, err = r.AverageBalanceBetween(id, 150, 100, 200)
	assert.Equal(t, ErrBadRange, err)

	assert.Equal(t, []uint64{0, 0}, r.BalancesAt(id, []uint32{10, 20}, 200))
}

func TestRegistryRecordCreatesLedger(t *testing.T) {
	db := store.NewInmem()
	defer func() {
		_ = db.Close()
	}()

	r, err := NewRegistry(db, 8)
	assert.NoError(t, err)

	id := randomAccountID(t)

	r.Record(id, 500, 100)
	r.Record(id, 700, 200)

	assert.Equal(t, 1, r.NumAccounts())
	assert.EqualValues(t, 700, r.Balance(id))
	assert.EqualValues(t, 500, r.BalanceAt(id, 150, 300))
}

func TestRegistryTotalSupplyLedger(t *testing.T) {
	db := store.NewInmem()
	defer func() {
		_ = db.Close()
	}()

	r, err := NewRegistry(db, 8)
	assert.NoError(t, err)

	r.RecordTotalSupply(1000, 100)
	r.RecordTotalSupply(4000, 200)

	assert.EqualValues(t, 4000, r.TotalSupply())
	assert.EqualValues(t, 1000, r.TotalSupplyAt(150, 300))
	assert.EqualValues(t, 4000, r.TotalSupplyAt(250, 300))

	avg, err := r.AverageTotalSupplyBetween(100, 200, 300)
	assert.NoError(t, err)
	assert.EqualValues(t, 1000, avg)

	assert.Equal(t, []uint64{0, 1000, 4000}, r.TotalSuppliesAt([]uint32{50, 150, 250}, 300))
}

func TestRegistryCommitAndReload(t *testing.T) {
	db := store.NewInmem()
	defer func() {
		_ = db.Close()
	}()

	r, err := NewRegistry(db, 8)
	assert.NoError(t, err)

	alice := randomAccountID(t)
	bob := randomAccountID(t)

	r.Record(alice, 500, 100)
	r.Record(bob, 300, 120)
	r.Record(alice, 800, 200)
	r.RecordTotalSupply(1100, 200)

	assert.NoError(t, r.Commit())

	loaded, err := NewRegistry(db, 8)
	assert.NoError(t, err)

	assert.Equal(t, 2, loaded.NumAccounts())
	assert.EqualValues(t, 800, loaded.Balance(alice))
	assert.EqualValues(t, 300, loaded.Balance(bob))
	assert.EqualValues(t, 1100, loaded.TotalSupply())

	now := uint32(300)

	assert.EqualValues(t, 500, loaded.BalanceAt(alice, 150, now))
	assert.EqualValues(t, 800, loaded.BalanceAt(alice, 250, now))
	assert.EqualValues(t, 1100, loaded.TotalSupplyAt(250, now))
}

func TestRegistryCommitIsIncremental(t *testing.T) {
	db := store.NewInmem()
	defer func() {
		_ = db.Close()
	}()

	r, err := NewRegistry(db, 8)
	assert.NoError(t, err)

	// Nothing dirty: committing must be a no-op.
	assert.NoError(t, r.Commit())

	_, err = db.Get(keySupplyLedger[:])
	assert.Equal(t, store.ErrNotFound, err)

	id := randomAccountID(t)

	r.Record(id, 500, 100)
	assert.NoError(t, r.Commit())

	_, err = db.Get(accountLedgerKey(id))
	assert.NoError(t, err)
}
