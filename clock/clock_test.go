package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsed(t *testing.T) {
	assert.EqualValues(t, 100, Elapsed(0, 100))
	assert.EqualValues(t, 0, Elapsed(42, 42))

	// Spans straddling the wrap point measure the true duration.
	assert.EqualValues(t, 200, Elapsed(^uint32(0)-99, 100))
}

func TestBefore(t *testing.T) {
	now := uint32(1000)

	assert.True(t, Before(100, 200, now))
	assert.False(t, Before(200, 100, now))
	assert.False(t, Before(100, 100, now))
}

func TestBeforeAcrossWrap(t *testing.T) {
	// now sits just past the wrap point; readings shortly before the wrap
	// are older than readings shortly after it.
	now := uint32(400)

	assert.True(t, Before(^uint32(0)-200, 200, now))
	assert.False(t, Before(200, ^uint32(0)-200, now))
}

func TestAtOrAfter(t *testing.T) {
	now := uint32(1000)

	assert.True(t, AtOrAfter(200, 100, now))
	assert.True(t, AtOrAfter(100, 100, now))
	assert.False(t, AtOrAfter(100, 200, now))

	now = uint32(400)

	assert.True(t, AtOrAfter(200, ^uint32(0)-200, now))
}

func TestSub(t *testing.T) {
	assert.EqualValues(t, 100, Sub(300, 200))
	assert.EqualValues(t, 0, Sub(42, 42))

	// A later accumulator that wrapped past 2^64 still yields the true
	// delta against an earlier reading.
	assert.EqualValues(t, 300, Sub(100, ^uint64(0)-199))
}
