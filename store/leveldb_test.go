package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelDBExistence(t *testing.T) {
	db, cleanup := NewTestKV(t, "level", "level_test")
	defer cleanup()

	_, err := db.Get([]byte("not_exist"))
	assert.Equal(t, ErrNotFound, err)

	err = db.Put([]byte("exist"), []byte("value"))
	assert.NoError(t, err)

	val, err := db.Get([]byte("exist"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}

func TestLevelDBWriteBatch(t *testing.T) {
	db, cleanup := NewTestKV(t, "level", "level_batch_test")
	defer cleanup()

	batch := db.NewWriteBatch()
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))

	assert.NoError(t, db.CommitWriteBatch(batch))

	val, err := db.Get([]byte("a"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
}
