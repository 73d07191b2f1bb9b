package api

import (
	"github.com/perlin-network/tally/log"
	"github.com/perlin-network/tally/sys"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

type InfoResponse struct {
	numAccounts int
	supply      uint64
}

var _ log.MarshalableArena = (*InfoResponse)(nil)

func (s *InfoResponse) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	arenaSet(arena, o, "version", sys.Version)
	arenaSet(arena, o, "num_accounts", s.numAccounts)
	arenaSet(arena, o, "supply", s.supply)

	return o.MarshalTo(nil), nil
}

func (g *Gateway) info(ctx *fasthttp.RequestCtx) {
	g.render(ctx, &InfoResponse{
		numAccounts: g.Registry.NumAccounts(),
		supply:      g.Registry.TotalSupply(),
	})
}
