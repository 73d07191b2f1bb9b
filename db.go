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

package tally

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/perlin-network/tally/store"
	"github.com/pkg/errors"
)

var (
	keyAccountLedger = [...]byte{0x1}
	keyAccountIndex  = [...]byte{0x2}
	keyAccountsLen   = [...]byte{0x3}
	keySupplyLedger  = [...]byte{0x4}
)

const sizeLedgerHeader = 4 + 4 + 4 + 8

func accountLedgerKey(id AccountID) []byte {
	k := make([]byte, 0, len(keyAccountLedger)+len(id))
	k = append(k, keyAccountLedger[:]...)
	k = append(k, id[:]...)

	return k
}

func accountIndexKey(i uint64) []byte {
	k := make([]byte, len(keyAccountIndex)+8)
	copy(k, keyAccountIndex[:])

	binary.BigEndian.PutUint64(k[len(keyAccountIndex):], i)

	return k
}

// Marshal encodes the ledger's cursors, present balance and populated ring
// slots. Slots are written in physical order, which covers every populated
// slot in both the partially filled and the saturated case.
func (l *Ledger) Marshal() []byte {
	buf := make([]byte, sizeLedgerHeader, sizeLedgerHeader+l.size*SizeObservation)

	binary.BigEndian.PutUint32(buf[0:4], uint32(len(l.history)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(l.next))
	binary.BigEndian.PutUint32(buf[8:12], uint32(l.size))
	binary.BigEndian.PutUint64(buf[12:20], l.balance)

	for i := 0; i < l.size; i++ {
		buf = append(buf, l.history[i].Marshal()...)
	}

	return buf
}

// UnmarshalLedger decodes a ledger's encoded bytes from the database.
func UnmarshalLedger(r io.Reader) (*Ledger, error) {
	var header [sizeLedgerHeader]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "failed to decode ledger header")
	}

	var (
		capacity = int(binary.BigEndian.Uint32(header[0:4]))
		next     = int(binary.BigEndian.Uint32(header[4:8]))
		size     = int(binary.BigEndian.Uint32(header[8:12]))
		balance  = binary.BigEndian.Uint64(header[12:20])
	)

	if capacity < 1 || size > capacity || next >= capacity {
		return nil, errors.Errorf(
			"ledger header is inconsistent: capacity %d, next %d, size %d",
			capacity, next, size,
		)
	}

	ledger := NewLedger(capacity)
	ledger.next = next
	ledger.size = size
	ledger.balance = balance

	for i := 0; i < size; i++ {
		o, err := UnmarshalObservation(r)
		if err != nil {
			return nil, err
		}

		ledger.history[i] = o
	}

	return ledger, nil
}

func batchLedger(batch store.WriteBatch, key []byte, ledger *Ledger) {
	batch.Put(key, ledger.Marshal())
}

func batchAccountIndex(batch store.WriteBatch, i uint64, id AccountID) {
	cpy := make([]byte, len(id))
	copy(cpy, id[:])

	batch.Put(accountIndexKey(i), cpy)
}

func batchAccountsLen(batch store.WriteBatch, n uint64) {
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], n)
	batch.Put(keyAccountsLen[:], buf[:])
}

func loadAccountsLen(kv store.KV) (uint64, error) {
	buf, err := kv.Get(keyAccountsLen[:])
	if err == store.ErrNotFound {
		return 0, nil
	}

	if err != nil {
		return 0, errors.Wrap(err, "error loading account count")
	}

	return binary.BigEndian.Uint64(buf), nil
}

func loadAccountID(kv store.KV, i uint64) (AccountID, error) {
	var id AccountID

	buf, err := kv.Get(accountIndexKey(i))
	if err != nil {
		return id, errors.Wrapf(err, "error loading account id %d", i)
	}

	if len(buf) != SizeAccountID {
		return id, errors.Errorf("account id %d is %d bytes long", i, len(buf))
	}

	copy(id[:], buf)

	return id, nil
}

// loadLedger reads one ledger out of kv. A missing key is not an error; it
// yields a nil ledger.
func loadLedger(kv store.KV, key []byte) (*Ledger, error) {
	buf, err := kv.Get(key)
	if err == store.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "error loading ledger")
	}

	return UnmarshalLedger(bytes.NewReader(buf))
}
