package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
)

// Based on https://github.com/labstack/echo/tree/master/middleware.

type corsConfig struct {
	allowOrigins     []string
	allowMethods     []string
	allowHeaders     []string
	allowCredentials bool
	exposeHeaders    []string

	// How long (in seconds) browsers may cache a preflight response.
	maxAge int
}

var defaultCORSConfig = corsConfig{
	allowOrigins:     []string{"*"},
	allowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	allowHeaders:     []string{"*"},
	exposeHeaders:    []string{"Link"},
	allowCredentials: true,
	maxAge:           300,
}

// cors returns a Cross-Origin Resource Sharing (CORS) middleware.
// See: https://developer.mozilla.org/en/docs/Web/HTTP/Access_control_CORS
func cors() func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return corsWithConfig(defaultCORSConfig)
}

func corsWithConfig(config corsConfig) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if len(config.allowOrigins) == 0 {
		config.allowOrigins = defaultCORSConfig.allowOrigins
	}

	if len(config.allowMethods) == 0 {
		config.allowMethods = defaultCORSConfig.allowMethods
	}

	allowMethods := strings.Join(config.allowMethods, ",")
	allowHeaders := strings.Join(config.allowHeaders, ",")
	exposeHeaders := strings.Join(config.exposeHeaders, ",")
	maxAge := strconv.Itoa(config.maxAge)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		fn := func(c *fasthttp.RequestCtx) {
			origin := string(c.Request.Header.Peek("Origin"))
			allowOrigin := ""

			for _, o := range config.allowOrigins {
				if o == "*" && config.allowCredentials {
					allowOrigin = origin
					break
				}

				if o == "*" || o == origin {
					allowOrigin = o
					break
				}
			}

			// Simple request
			if string(c.Method()) != http.MethodOptions {
				c.Response.Header.Add("Vary", "Origin")
				c.Response.Header.Set("Access-Control-Allow-Origin", allowOrigin)

				if config.allowCredentials {
					c.Response.Header.Set("Access-Control-Allow-Credentials", "true")
				}

				if exposeHeaders != "" {
					c.Response.Header.Set("Access-Control-Expose-Headers", exposeHeaders)
				}

				next(c)
				return
			}

			// Preflight request
			c.Response.Header.Add("Vary", "Origin")
			c.Response.Header.Add("Vary", "Access-Control-Request-Method")
			c.Response.Header.Add("Vary", "Access-Control-Request-Headers")
			c.Response.Header.Set("Access-Control-Allow-Origin", allowOrigin)
			c.Response.Header.Set("Access-Control-Allow-Methods", allowMethods)

			if config.allowCredentials {
				c.Response.Header.Set("Access-Control-Allow-Credentials", "true")
			}

			if allowHeaders != "" {
				c.Response.Header.Set("Access-Control-Allow-Headers", allowHeaders)
			} else {
				h := string(c.Response.Header.Peek("Access-Control-Request-Headers"))
				if h != "" {
					c.Response.Header.Set("Access-Control-Allow-Headers", h)
				}
			}

			if config.maxAge > 0 {
				c.Response.Header.Set("Access-Control-Max-Age", maxAge)
			}

			c.Response.SetStatusCode(http.StatusNoContent)
		}

		return fasthttp.RequestHandler(fn)
	}
}
