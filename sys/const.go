package sys

const (
	// ClockBits is the width of the observation clock. Readings advance
	// modulo 2^ClockBits and are compared through the clock package only.
	ClockBits = 32
)

var (
	// Number of observations each balance history retains before ring
	// eviction begins overwriting the oldest.
	DefaultHistorySize = 365

	// Max number of timestamps accepted in one batched query.
	MaxQueryBatchSize = 1024
)
