// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/buaazp/fasthttprouter"
	"github.com/perlin-network/tally"
	"github.com/perlin-network/tally/conf"
	"github.com/perlin-network/tally/log"
	"github.com/perlin-network/tally/lru"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

const responseCacheSize = 1024

type Gateway struct {
	*Config

	addr string

	router *fasthttprouter.Router
	server *fasthttp.Server

	rateLimiter *rateLimiter

	parserPool *fastjson.ParserPool
	arenaPool  *fastjson.ArenaPool

	cache *lru.Cache
}

type Config struct {
	Port int

	Registry *tally.Registry

	RequestsPerSecond float64
}

func New(opts *Config) *Gateway {
	g := &Gateway{
		Config:     opts,
		parserPool: new(fastjson.ParserPool),
		arenaPool:  new(fastjson.ArenaPool),
		cache:      lru.NewCache(responseCacheSize),
	}

	rps := conf.GetAPIRequestsPerSecond()
	if opts.RequestsPerSecond > 0 {
		rps = opts.RequestsPerSecond
	}

	g.rateLimiter = newRateLimiter(rps)

	g.addr = ":" + strconv.Itoa(opts.Port)

	g.router = fasthttprouter.New()

	// fasthttprouter considers a route without a handler for the requested
	// method to not exist at all, which swallows CORS preflights. Preflights
	// are therefore answered out of the notFound handler.
	g.router.HandleOPTIONS = false
	g.router.NotFound = g.notFound()

	g.routeWithMiddleware("GET", "/info", g.info, true)

	// Per-account history endpoints.
	g.routeWithMiddleware("GET", "/ledger/:id/balance",
		g.getBalance, true, g.accountScope)
	g.routeWithMiddleware("GET", "/ledger/:id/average",
		g.getAverageBalance, true, g.accountScope)
	g.routeWithMiddleware("POST", "/ledger/:id/balances",
		g.getBalances, true, g.accountScope)
	g.routeWithMiddleware("POST", "/ledger/:id/averages",
		g.getAverageBalances, true, g.accountScope)

	// Total-supply history endpoints.
	g.routeWithMiddleware("GET", "/supply/balance",
		g.getTotalSupply, true)
	g.routeWithMiddleware("GET", "/supply/average",
		g.getAverageTotalSupply, true)

	// Token operation endpoints.
	g.routeWithMiddleware("POST", "/tx/mint",
		g.mint, false, g.auth)
	g.routeWithMiddleware("POST", "/tx/burn",
		g.burn, false, g.auth)
	g.routeWithMiddleware("POST", "/tx/transfer",
		g.transfer, false, g.auth)

	g.server = &fasthttp.Server{Handler: g.router.Handler}

	return g
}

// Start listens on the configured port. It does not block.
func (g *Gateway) Start() error {
	stop := g.rateLimiter.cleanup(10 * time.Minute)

	ln, err := net.Listen("tcp4", g.addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen to "+g.addr)
	}

	go func() {
		defer stop()

		if err := g.server.Serve(ln); err != nil {
			logger := log.Node()
			logger.Fatal().Err(err).
				Str("addr", g.addr).
				Msg("Failed to start the HTTP server.")
		}
	}()

	logger := log.Node()
	logger.Info().
		Str("addr", g.addr).
		Msg("Started the HTTP API server.")

	return nil
}

func (g *Gateway) Shutdown() {
	if err := g.server.Shutdown(); err != nil {
		logger := log.Node()
		logger.Error().
			Err(err).
			Msg("Failed to stop the HTTP server.")
	}
}

func (g *Gateway) routeWithMiddleware(method, route string,
	h fasthttp.RequestHandler, rateLimit bool, ms ...middleware) {

	topMs := make([]middleware, 0, 3)

	topMs = append(topMs, recoverer)

	if rateLimit {
		topMs = append(topMs, g.rateLimiter.limit(route))
	}

	topMs = append(topMs, cors())

	g.router.Handle(method, route, chain(h, append(topMs, ms...)))
}

func (g *Gateway) notFound() func(ctx *fasthttp.RequestCtx) {
	methods := []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

	notFoundHandler := func(ctx *fasthttp.RequestCtx) {
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound),
			fasthttp.StatusNotFound)
	}

	// Only triggered for preflights, so the wrapped handler never runs.
	cors := cors()(notFoundHandler)

	lookupCtx := &fasthttp.RequestCtx{}

	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Method()) != "OPTIONS" {
			notFoundHandler(ctx)
			return
		}

		path := string(ctx.Path())

		// Answer the preflight only if the route exists for some method.
		for _, m := range methods {
			h, _ := g.router.Lookup(m, path, lookupCtx)
			if h != nil {
				cors(ctx)
				return
			}
		}

		notFoundHandler(ctx)
	}
}

func (g *Gateway) render(ctx *fasthttp.RequestCtx, m log.MarshalableArena) {
	g._render(ctx, m, http.StatusOK)
}

func (g *Gateway) renderError(ctx *fasthttp.RequestCtx, e *ErrResponse) {
	g._render(ctx, e, e.HTTPStatusCode)
}

func (g *Gateway) _render(ctx *fasthttp.RequestCtx, m log.MarshalableArena, status int) {
	arena := g.arenaPool.Get()
	defer g.arenaPool.Put(arena)

	b, err := m.MarshalArena(arena)
	if err != nil {
		ctx.Error(fmt.Sprintf(`{ "error": "render error: %s" }`, err.Error()),
			http.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBody(b)
}

// clockNow maps wall time onto the ledger clock's modular dial.
func clockNow() uint32 {
	return uint32(time.Now().Unix())
}
