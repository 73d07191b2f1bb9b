package api

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/perlin-network/tally"
	"github.com/perlin-network/tally/conf"
	"github.com/perlin-network/tally/store"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

func newTestGateway(t testing.TB) (*Gateway, func()) {
	t.Helper()

	db := store.NewInmem()

	registry, err := tally.NewRegistry(db, 16)
	assert.NoError(t, err)

	g := New(&Config{Port: 0, Registry: registry})

	return g, func() {
		_ = db.Close()
	}
}

func getRequest(uri string) *fasthttp.RequestCtx {
	ctx := new(fasthttp.RequestCtx)
	ctx.Request.Header.SetMethod("GET")
	ctx.Request.SetRequestURI(uri)

	return ctx
}

func postRequest(uri, body string) *fasthttp.RequestCtx {
	ctx := new(fasthttp.RequestCtx)
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.SetRequestURI(uri)
	ctx.Request.SetBody([]byte(body))

	return ctx
}

func parseResponse(t testing.TB, ctx *fasthttp.RequestCtx) *fastjson.Value {
	t.Helper()

	v, err := fastjson.ParseBytes(ctx.Response.Body())
	assert.NoError(t, err)

	return v
}

func TestGetBalance(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	g.Registry.Record(id, 500, 100)
	g.Registry.Record(id, 700, 200)

	ctx := getRequest("/ledger/x/balance?time=150&now=300")
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getBalance)(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 500, v.GetUint64("balance"))
	assert.Equal(t, hex.EncodeToString(id[:]), string(v.GetStringBytes("account_id")))
}

func TestGetBalanceServesCachedResponse(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	g.Registry.Record(id, 500, 100)

	for i := 0; i < 2; i++ {
		ctx := getRequest("/ledger/x/balance?time=150&now=300")
		ctx.SetUserValue("id", hex.EncodeToString(id[:]))

		g.accountScope(g.getBalance)(ctx)

		v := parseResponse(t, ctx)
		assert.EqualValues(t, 500, v.GetUint64("balance"))
	}

	// A fresh write must not be shadowed by the memoized response.
	g.Registry.Record(id, 900, 200)

	ctx := getRequest("/ledger/x/balance?time=250&now=300")
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getBalance)(ctx)

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 900, v.GetUint64("balance"))
}

func TestGetBalanceRejectsMalformedID(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	ctx := getRequest("/ledger/x/balance")
	ctx.SetUserValue("id", "not-hex")

	g.accountScope(g.getBalance)(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = getRequest("/ledger/x/balance")
	ctx.SetUserValue("id", "abcd")

	g.accountScope(g.getBalance)(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestGetAverageBalance(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	g.Registry.Record(id, 1000, 100)
	g.Registry.Record(id, 400, 200)

	ctx := getRequest("/ledger/x/average?start=120&end=180&now=400")
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getAverageBalance)(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 1000, v.GetUint64("average"))
}

func TestGetAverageBalanceRejectsBadRange(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	g.Registry.Record(id, 1000, 100)

	ctx := getRequest("/ledger/x/average?start=250&end=150&now=300")
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getAverageBalance)(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestGetBalancesBatch(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	g.Registry.Record(id, 1000, 100)
	g.Registry.Record(id, 400, 200)

	ctx := postRequest("/ledger/x/balances", `{"times": [50, 150, 250], "now": 300}`)
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getBalances)(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	values := parseResponse(t, ctx).GetArray("values")
	assert.Len(t, values, 3)

	expected := []uint64{0, 1000, 400}
	for i, item := range values {
		u, err := item.Uint64()
		assert.NoError(t, err)
		assert.Equal(t, expected[i], u)
	}
}

func TestGetBalancesBatchLimit(t *testing.T) {
	defer conf.Update(conf.WithQueryBatchLimit(conf.GetQueryBatchLimit()))
	conf.Update(conf.WithQueryBatchLimit(2))

	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	ctx := postRequest("/ledger/x/balances", `{"times": [1, 2, 3], "now": 300}`)
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getBalances)(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestGetAverageBalancesBatch(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}

	g.Registry.Record(id, 1000, 100)
	g.Registry.Record(id, 400, 200)

	ctx := postRequest("/ledger/x/averages",
		`{"starts": [120, 250], "ends": [180, 350], "now": 400}`)
	ctx.SetUserValue("id", hex.EncodeToString(id[:]))

	g.accountScope(g.getAverageBalances)(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	values := parseResponse(t, ctx).GetArray("values")
	assert.Len(t, values, 2)
}

func TestGetTotalSupply(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	g.Registry.RecordTotalSupply(1000, 100)
	g.Registry.RecordTotalSupply(4000, 200)

	ctx := getRequest("/supply/balance?time=150&now=300")

	g.getTotalSupply(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 1000, v.GetUint64("supply"))
}

func TestGetAverageTotalSupply(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	g.Registry.RecordTotalSupply(1000, 100)

	ctx := getRequest("/supply/average?start=100&end=200&now=300")

	g.getAverageTotalSupply(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 1000, v.GetUint64("average"))
}

func TestMintEndpoint(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}
	body := fmt.Sprintf(`{"account": "%s", "amount": 1000, "time": 100}`,
		hex.EncodeToString(id[:]))

	ctx := postRequest("/tx/mint", body)

	g.mint(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 1000, v.GetUint64("balance"))
	assert.EqualValues(t, 1000, v.GetUint64("supply"))
}

func TestBurnEndpointInsufficientBalance(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}
	body := fmt.Sprintf(`{"account": "%s", "amount": 1000, "time": 100}`,
		hex.EncodeToString(id[:]))

	ctx := postRequest("/tx/burn", body)

	g.burn(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestTransferEndpoint(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	from := tally.AccountID{0xaa}
	to := tally.AccountID{0xbb}

	assert.NoError(t, g.Registry.Mint(from, 1000, 100))

	body := fmt.Sprintf(`{"from": "%s", "to": "%s", "amount": 400, "time": 200}`,
		hex.EncodeToString(from[:]), hex.EncodeToString(to[:]))

	ctx := postRequest("/tx/transfer", body)

	g.transfer(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 600, v.GetUint64("balance"))
	assert.EqualValues(t, 1000, v.GetUint64("supply"))

	assert.EqualValues(t, 400, g.Registry.Balance(to))
}

func TestAuthMiddleware(t *testing.T) {
	defer conf.Update(conf.WithSecret(""))
	conf.Update(conf.WithSecret("s3cret"))

	g, cleanup := newTestGateway(t)
	defer cleanup()

	var called bool
	handler := g.auth(func(ctx *fasthttp.RequestCtx) {
		called = true
	})

	ctx := postRequest("/tx/mint", "{}")
	handler(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())

	ctx = postRequest("/tx/mint", "{}")
	ctx.Request.Header.Set("Authorization", "Bearer s3cret")
	handler(ctx)

	assert.True(t, called)
}

func TestInfoEndpoint(t *testing.T) {
	g, cleanup := newTestGateway(t)
	defer cleanup()

	id := tally.AccountID{0xaa}
	assert.NoError(t, g.Registry.Mint(id, 1000, 100))

	ctx := getRequest("/info")

	g.info(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	v := parseResponse(t, ctx)
	assert.EqualValues(t, 1, v.GetUint64("num_accounts"))
	assert.EqualValues(t, 1000, v.GetUint64("supply"))
}
