package tally

import (
	"github.com/perlin-network/tally/log"
	"github.com/pkg/errors"
)

// Mint credits freshly created units to an account, growing the aggregate
// supply by the same amount.
func (r *Registry) Mint(id AccountID, amount uint64, now uint32) error {
	r.Lock()
	defer r.Unlock()

	supply := r.supply.Balance()
	if supply+amount < supply {
		return ErrSupplyOverflow
	}

	r.record(id, r.balanceOf(id)+amount, now)
	r.recordSupply(supply+amount, now)

	logger := log.Token("mint")
	logger.Info().
		Hex("account_id", id[:]).
		Uint64("amount", amount).
		Msg("Minted tokens.")

	return nil
}

// Burn destroys units held by an account, shrinking the aggregate supply by
// the same amount.
func (r *Registry) Burn(id AccountID, amount uint64, now uint32) error {
	r.Lock()
	defer r.Unlock()

	balance := r.balanceOf(id)
	if balance < amount {
		return errors.Wrapf(ErrInsufficientBalance, "account holds %d, tried to burn %d", balance, amount)
	}

	r.record(id, balance-amount, now)
	r.recordSupply(r.supply.Balance()-amount, now)

	logger := log.Token("burn")
	logger.Info().
		Hex("account_id", id[:]).
		Uint64("amount", amount).
		Msg("Burned tokens.")

	return nil
}

// Transfer moves units between two accounts. Both account ledgers observe
// the change; the aggregate supply is untouched.
func (r *Registry) Transfer(from, to AccountID, amount uint64, now uint32) error {
	r.Lock()
	defer r.Unlock()

	balance := r.balanceOf(from)
	if balance < amount {
		return errors.Wrapf(ErrInsufficientBalance, "account holds %d, tried to send %d", balance, amount)
	}

	if from == to {
		return nil
	}

	r.record(from, balance-amount, now)
	r.record(to, r.balanceOf(to)+amount, now)

	logger := log.Token("transfer")
	log.Info(&logger, TokenTransferred{From: from, To: to, Amount: amount, Timestamp: now})

	return nil
}
