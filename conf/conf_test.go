package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	assert.EqualValues(t, 365, GetHistorySize())
	assert.EqualValues(t, 1024, GetQueryBatchLimit())
	assert.EqualValues(t, 1000, GetAPIRequestsPerSecond())
	assert.EqualValues(t, "", GetSecret())
}

func TestUpdate(t *testing.T) {
	defer resetConfig()

	Update(
		WithHistorySize(42),
		WithQueryBatchLimit(7),
		WithAPIRequestsPerSecond(13),
		WithSecret("shambles"),
	)

	assert.EqualValues(t, 42, GetHistorySize())
	assert.EqualValues(t, 7, GetQueryBatchLimit())
	assert.EqualValues(t, 13, GetAPIRequestsPerSecond())
	assert.EqualValues(t, "shambles", GetSecret())
}
