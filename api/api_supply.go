package api

import (
	"github.com/perlin-network/tally/log"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

type SupplyResponse struct {
	time   uint32
	supply uint64
}

var _ log.MarshalableArena = (*SupplyResponse)(nil)

func (s *SupplyResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "time", s.time)
	arenaSet(arena, o, "supply", s.supply)

	return o.MarshalTo(nil), nil
}

type AverageSupplyResponse struct {
	start   uint32
	end     uint32
	average uint64
}

var _ log.MarshalableArena = (*AverageSupplyResponse)(nil)

func (s *AverageSupplyResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "start", s.start)
	arenaSet(arena, o, "end", s.end)
	arenaSet(arena, o, "average", s.average)

	return o.MarshalTo(nil), nil
}

func (g *Gateway) getTotalSupply(ctx *fasthttp.RequestCtx) {
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

	g.render(ctx, &SupplyResponse{
		time:   target,
		supply: g.Registry.TotalSupplyAt(target, now),
	})
}

func (g *Gateway) getAverageTotalSupply(ctx *fasthttp.RequestCtx) {
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

	average, err := g.Registry.AverageTotalSupplyBetween(start, end, now)
	if err != nil {
		g.renderError(ctx, ErrBadRequest(err))
		return
	}

	g.render(ctx, &AverageSupplyResponse{start: start, end: end, average: average})
}
