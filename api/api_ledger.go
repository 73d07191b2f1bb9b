package api

import (
	"strconv"

	"github.com/perlin-network/tally"
	"github.com/perlin-network/tally/conf"
	"github.com/perlin-network/tally/log"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

// balanceCacheKey pins a memoized point-query response to the state of the
// account's history it was answered against. Any subsequent write to the
// account changes either the newest observation's timestamp or the present
// balance, so stale entries can never be served.
type balanceCacheKey struct {
	id      tally.AccountID
	target  uint32
	stamp   uint32
	balance uint64
}

type BalanceResponse struct {
	id tally.AccountID

	time    uint32
	balance uint64
}

var _ log.MarshalableArena = (*BalanceResponse)(nil)

func (s *BalanceResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "account_id", s.id[:])
	arenaSet(arena, o, "time", s.time)
	arenaSet(arena, o, "balance", s.balance)

	return o.MarshalTo(nil), nil
}

type AverageBalanceResponse struct {
	id tally.AccountID

	start   uint32
	end     uint32
	average uint64
}

var _ log.MarshalableArena = (*AverageBalanceResponse)(nil)

func (s *AverageBalanceResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "account_id", s.id[:])
	arenaSet(arena, o, "start", s.start)
	arenaSet(arena, o, "end", s.end)
	arenaSet(arena, o, "average", s.average)

	return o.MarshalTo(nil), nil
}

type BatchResponse struct {
	values []uint64
}

var _ log.MarshalableArena = (*BatchResponse)(nil)

func (s *BatchResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "values", arenaNewUintArray(arena, s.values))

	return o.MarshalTo(nil), nil
}

func queryClock(args *fasthttp.Args, key string, fallback uint32) (uint32, error) {
	raw := args.Peek(key)
	if len(raw) == 0 {
		return fallback, nil
	}

	v, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "could not parse %q", key)
	}

	return uint32(v), nil
}

func (g *Gateway) getBalance(ctx *fasthttp.RequestCtx) {
	id, ok := ctx.UserValue("account_id").(tally.AccountID)
	if !ok {
		return
	}

	args := ctx.QueryArgs()

	now, err := queryClock(args, "now", clockNow())
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	target, err := queryClock(args, "time", now)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	stamp, _ := g.Registry.LastUpdated(id)
	key := balanceCacheKey{id: id, target: target, stamp: stamp, balance: g.Registry.Balance(id)}

	if cached, ok := g.cache.Load(key); ok {
		g.render(ctx, cached.(*BalanceResponse))
		return
	}

	res := &BalanceResponse{
		id:      id,
		time:    target,
		balance: g.Registry.BalanceAt(id, target, now),
	}

	g.cache.Put(key, res)
	g.render(ctx, res)
}

func (g *Gateway) getAverageBalance(ctx *fasthttp.RequestCtx) {
	id, ok := ctx.UserValue("account_id").(tally.AccountID)
	if !ok {
		return
	}

	args := ctx.QueryArgs()

	now, err := queryClock(args, "now", clockNow())
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	start, err := queryClock(args, "start", now)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	end, err := queryClock(args, "end", now)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	average, err := g.Registry.AverageBalanceBetween(id, start, end, now)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &AverageBalanceResponse{id: id, start: start, end: end, average: average})
}

// parseClockArray decodes a JSON array of clock readings, capped at the
// configured batch limit.
func parseClockArray(v *fastjson.Value, key string) ([]uint32, error) {
	raw := v.GetArray(key)
	if raw == nil {
		return nil, errors.Errorf("missing array %q", key)
	}

	if limit := conf.GetQueryBatchLimit(); len(raw) > limit {
		return nil, errors.Errorf("batch of %d readings exceeds the limit of %d", len(raw), limit)
	}

	out := make([]uint32, len(raw))

	for i, item := range raw {
		u, err := item.Uint()
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d of %q is not a clock reading", i, key)
		}

		out[i] = uint32(u)
	}

	return out, nil
}

func (g *Gateway) parseBody(ctx *fasthttp.RequestCtx) (*fastjson.Value, func(), error) {
	p := g.parserPool.Get()
	release := func() { g.parserPool.Put(p) }

	v, err := p.ParseBytes(ctx.PostBody())
	if err != nil {
		release()
		return nil, nil, errors.Wrap(err, "malformed request body")
	}

	return v, release, nil
}

func (g *Gateway) getBalances(ctx *fasthttp.RequestCtx) {
	id, ok := ctx.UserValue("account_id").(tally.AccountID)
	if !ok {
		return
	}

	v, release, err := g.parseBody(ctx)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}
	defer release()

	now := uint32(v.GetUint("now"))
	if !v.Exists("now") {
		now = clockNow()
	}

	times, err := parseClockArray(v, "times")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &BatchResponse{values: g.Registry.BalancesAt(id, times, now)})
}

func (g *Gateway) getAverageBalances(ctx *fasthttp.RequestCtx) {
	id, ok := ctx.UserValue("account_id").(tally.AccountID)
	if !ok {
		return
	}

	v, release, err := g.parseBody(ctx)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}
	defer release()

	now := uint32(v.GetUint("now"))
	if !v.Exists("now") {
		now = clockNow()
	}

	starts, err := parseClockArray(v, "starts")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	ends, err := parseClockArray(v, "ends")
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	averages, err := g.Registry.AverageBalancesBetween(id, starts, ends, now)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &BatchResponse{values: averages})
}
