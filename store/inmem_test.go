package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInmemExistence(t *testing.T) {
	db := NewInmem()
	defer func() {
		_ = db.Close()
	}()

	_, err := db.Get([]byte("not_exist"))
	assert.Equal(t, ErrNotFound, err)

	err = db.Put([]byte("exist"), []byte{})
	assert.NoError(t, err)

	val, err := db.Get([]byte("exist"))
	assert.NoError(t, err)
	assert.Equal(t, []byte{}, val)
}

func TestInmemDelete(t *testing.T) {
	db := NewInmem()
	defer func() {
		_ = db.Close()
	}()

	assert.NoError(t, db.Put([]byte("k"), []byte("v")))
	assert.NoError(t, db.Delete([]byte("k")))

	_, err := db.Get([]byte("k"))
	assert.Equal(t, ErrNotFound, err)
}

func TestInmemWriteBatch(t *testing.T) {
	db := NewInmem()
	defer func() {
		_ = db.Close()
	}()

	batch := db.NewWriteBatch()
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	assert.Equal(t, 2, batch.Count())

	assert.NoError(t, db.CommitWriteBatch(batch))

	val, err := db.Get([]byte("a"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	val, err = db.Get([]byte("b"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("2"), val)
}
