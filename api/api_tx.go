package api

import (
	"encoding/hex"

	"github.com/perlin-network/tally"
	"github.com/perlin-network/tally/log"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

type TxResponse struct {
	id tally.AccountID

	balance uint64
	supply  uint64
}

var _ log.MarshalableArena = (*TxResponse)(nil)

func (s *TxResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "account_id", s.id[:])
	arenaSet(arena, o, "balance", s.balance)
	arenaSet(arena, o, "supply", s.supply)

	return o.MarshalTo(nil), nil
}

func bodyAccountID(v *fastjson.Value, key string) (tally.AccountID, error) {
	var id tally.AccountID

	raw := v.GetStringBytes(key)
	if len(raw) == 0 {
		return id, errors.Errorf("missing field %q", key)
	}

	slice, err := hex.DecodeString(string(raw))
	if err != nil {
		return id, errors.Wrapf(err, "field %q must be presented as valid hex", key)
	}

	if len(slice) != tally.SizeAccountID {
		return id, errors.Errorf("field %q must be %d bytes long", key, tally.SizeAccountID)
	}

	copy(id[:], slice)

	return id, nil
}

func bodyAmount(v *fastjson.Value) (uint64, error) {
	amount := v.Get("amount")
	if amount == nil {
		return 0, errors.New(`missing field "amount"`)
	}

	u, err := amount.Uint64()
	if err != nil {
		return 0, errors.Wrap(err, `field "amount" must be a non-negative integer`)
	}

	return u, nil
}

func bodyClock(v *fastjson.Value) uint32 {
	if v.Exists("time") {
		return uint32(v.GetUint("time"))
	}

	return clockNow()
}

func (g *Gateway) mint(ctx *fasthttp.RequestCtx) {
	v, release, err := g.parseBody(ctx)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}
	defer release()

	id, err := bodyAccountID(v, "account")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	amount, err := bodyAmount(v)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	if err := g.Registry.Mint(id, amount, bodyClock(v)); err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &TxResponse{
		id:      id,
		balance: g.Registry.Balance(id),
		supply:  g.Registry.TotalSupply(),
	})
}

func (g *Gateway) burn(ctx *fasthttp.RequestCtx) {
	v, release, err := g.parseBody(ctx)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}
	defer release()

	id, err := bodyAccountID(v, "account")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	amount, err := bodyAmount(v)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	if err := g.Registry.Burn(id, amount, bodyClock(v)); err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &TxResponse{
		id:      id,
		balance: g.Registry.Balance(id),
		supply:  g.Registry.TotalSupply(),
	})
}

func (g *Gateway) transfer(ctx *fasthttp.RequestCtx) {
	v, release, err := g.parseBody(ctx)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}
	defer release()

	from, err := bodyAccountID(v, "from")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	to, err := bodyAccountID(v, "to")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	amount, err := bodyAmount(v)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	if err := g.Registry.Transfer(from, to, amount, bodyClock(v)); err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &TxResponse{
		id:      from,
		balance: g.Registry.Balance(from),
		supply:  g.Registry.TotalSupply(),
	})
}
