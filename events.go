package tally

import (
	"encoding/hex"

	"github.com/perlin-network/tally/log"
	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
)

// balance_updated
type AccountBalanceUpdated struct {
	AccountID AccountID `json:"account_id"`
	Balance   uint64    `json:"balance"`
	Timestamp uint32    `json:"timestamp"`
}

var _ log.Loggable = (*AccountBalanceUpdated)(nil)

func (a AccountBalanceUpdated) MarshalEvent(ev *zerolog.Event) {
	ev.Hex("account_id", a.AccountID[:])
	ev.Uint64("balance", a.Balance)
	ev.Uint32("timestamp", a.Timestamp)
	ev.Msg("Balance updated.")
}

func (a *AccountBalanceUpdated) UnmarshalValue(v *fastjson.Value) error {
	if err := accountIDFromHex(v.GetStringBytes("account_id"), &a.AccountID); err != nil {
		return err
	}

	a.Balance = v.GetUint64("balance")
	a.Timestamp = uint32(v.GetUint("timestamp"))

	return nil
}

// total_supply_updated
type TotalSupplyUpdated struct {
	Supply    uint64 `json:"supply"`
	Timestamp uint32 `json:"timestamp"`
}

var _ log.Loggable = (*TotalSupplyUpdated)(nil)

func (t TotalSupplyUpdated) MarshalEvent(ev *zerolog.Event) {
	ev.Uint64("supply", t.Supply)
	ev.Uint32("timestamp", t.Timestamp)
	ev.Msg("Total supply updated.")
}

func (t *TotalSupplyUpdated) UnmarshalValue(v *fastjson.Value) error {
	t.Supply = v.GetUint64("supply")
	t.Timestamp = uint32(v.GetUint("timestamp"))

	return nil
}

// transfer
type TokenTransferred struct {
	From      AccountID `json:"from"`
	To        AccountID `json:"to"`
	Amount    uint64    `json:"amount"`
	Timestamp uint32    `json:"timestamp"`
}

var _ log.Loggable = (*TokenTransferred)(nil)

func (t TokenTransferred) MarshalEvent(ev *zerolog.Event) {
	ev.Hex("from", t.From[:])
	ev.Hex("to", t.To[:])
	ev.Uint64("amount", t.Amount)
	ev.Uint32("timestamp", t.Timestamp)
	ev.Msg("Transferred tokens.")
}

func (t *TokenTransferred) UnmarshalValue(v *fastjson.Value) error {
	if err := accountIDFromHex(v.GetStringBytes("from"), &t.From); err != nil {
		return err
	}

	if err := accountIDFromHex(v.GetStringBytes("to"), &t.To); err != nil {
		return err
	}

	t.Amount = v.GetUint64("amount")
	t.Timestamp = uint32(v.GetUint("timestamp"))

	return nil
}

func accountIDFromHex(src []byte, id *AccountID) error {
	slice, err := hex.DecodeString(string(src))
	if err != nil {
		return err
	}

	copy(id[:], slice)

	return nil
}
