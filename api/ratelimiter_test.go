package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestRateLimiterLimit(t *testing.T) {
	r := newRateLimiter(1)

	var served int
	handler := r.limit("/route")(func(ctx *fasthttp.RequestCtx) {
		served++
	})

	for i := 0; i < 5; i++ {
		ctx := new(fasthttp.RequestCtx)
		handler(ctx)
	}

	// Burst of 1 per second: only the first request passes.
	assert.Equal(t, 1, served)
}

func TestRateLimiterKeyedByRoute(t *testing.T) {
	r := newRateLimiter(1)

	var served int
	a := r.limit("/a")(func(ctx *fasthttp.RequestCtx) { served++ })
	b := r.limit("/b")(func(ctx *fasthttp.RequestCtx) { served++ })

	a(new(fasthttp.RequestCtx))
	b(new(fasthttp.RequestCtx))

	assert.Equal(t, 2, served)
}

func TestRateLimiterRejectsWithStatus(t *testing.T) {
	r := newRateLimiter(1)

	handler := r.limit("/route")(func(ctx *fasthttp.RequestCtx) {})

	handler(new(fasthttp.RequestCtx))

	ctx := new(fasthttp.RequestCtx)
	handler(ctx)

	assert.Equal(t, http.StatusTooManyRequests, ctx.Response.StatusCode())
}

func TestRateLimiterCleanup(t *testing.T) {
	r := newRateLimiter(1)
	r.expirationTTL = time.Nanosecond

	r.getLimiter("/route")

	stop := r.cleanup(time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		r.RLock()
		defer r.RUnlock()

		return len(r.limiters) == 0
	}, time.Second, 5*time.Millisecond)
}
