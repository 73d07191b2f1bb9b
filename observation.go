package tally

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// SizeObservation is the encoded width of a single observation: a 64-bit
// cumulative balance followed by a 32-bit clock reading.
const SizeObservation = 12

// Observation is one record of the running time-integral of a subject's
// balance. Cumulative holds the sum of balance multiplied by the time it was
// held, accumulated up to Timestamp modulo 2^64. Timestamp is a wrapping
// 32-bit clock reading.
//
// Observations are immutable once written, with one exception: the newest
// observation of a ledger is overwritten in place by a write landing on the
// same clock reading.
type Observation struct {
	Cumulative uint64
	Timestamp  uint32
}

func (o Observation) Marshal() []byte {
	var buf [SizeObservation]byte

	binary.BigEndian.PutUint64(buf[0:8], o.Cumulative)
	binary.BigEndian.PutUint32(buf[8:12], o.Timestamp)

	return buf[:]
}

func UnmarshalObservation(r io.Reader) (Observation, error) {
	var (
		o   Observation
		buf [SizeObservation]byte
	)

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return o, errors.Wrap(err, "failed to decode observation")
	}

	o.Cumulative = binary.BigEndian.Uint64(buf[0:8])
	o.Timestamp = binary.BigEndian.Uint32(buf[8:12])

	return o, nil
}
