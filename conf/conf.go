package conf

import (
	"fmt"
	"sync"

	"github.com/perlin-network/tally/sys"
)

type config struct {
	// Number of observations every newly created ledger retains.
	historySize int

	// Max number of timestamps accepted in a single batched query.
	queryBatchLimit int

	// Rate limit applied per route and remote address by the HTTP gateway.
	apiRequestsPerSecond float64

	// Shared secret for http api authorization.
	secret string
}

var (
	l sync.RWMutex

	defaultConf = defaultConfig()
	c           = defaultConf
)

func defaultConfig() config {
	return config{
		historySize:          sys.DefaultHistorySize,
		queryBatchLimit:      sys.MaxQueryBatchSize,
		apiRequestsPerSecond: 1000,
	}
}

type Option func(*config)

func WithHistorySize(size int) Option {
	return func(c *config) {
		c.historySize = size
	}
}

func WithQueryBatchLimit(limit int) Option {
	return func(c *config) {
		c.queryBatchLimit = limit
	}
}

func WithAPIRequestsPerSecond(rps float64) Option {
	return func(c *config) {
		c.apiRequestsPerSecond = rps
	}
}

func WithSecret(secret string) Option {
	return func(c *config) {
		c.secret = secret
	}
}

func Update(options ...Option) {
	l.Lock()
	defer l.Unlock()

	for _, option := range options {
		option(&c)
	}
}

func GetHistorySize() int {
	l.RLock()
	defer l.RUnlock()

	return c.historySize
}

func GetQueryBatchLimit() int {
	l.RLock()
	defer l.RUnlock()

	return c.queryBatchLimit
}

func GetAPIRequestsPerSecond() float64 {
	l.RLock()
	defer l.RUnlock()

	return c.apiRequestsPerSecond
}

func GetSecret() string {
	l.RLock()
	defer l.RUnlock()

	return c.secret
}

func Stringify() string {
	l.RLock()
	defer l.RUnlock()

	return fmt.Sprintf("%+v", c)
}

func resetConfig() {
	l.Lock()
	defer l.Unlock()

	c = defaultConf
}
