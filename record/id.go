// Package record implements the deterministic record identifier and the
// per-bucket text file codec (§4.4, §4.5).
package record

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/k0kubun/sqligit/value"
)

// ID is the 64-bit identifier assigned to a record. The top 9 bits are its
// bucket prefix (§4.4).
type ID uint64

// Prefix returns the 9-bit bucket prefix, a value in 0..511.
func (id ID) Prefix() uint64 {
	return uint64(id) >> 55
}

// Hash computes the record identifier from the ordered sequence of values
// that define the record's identity: the primary-key column alone when the
// table declares one, or every column otherwise (§4.4).
//
// The algorithm is FNV-1a 64-bit: stable across runs and hosts, unlike
// hash/maphash (randomized per process) or Go's built-in map hashing.
func Hash(values []value.Value) ID {
	h := fnv.New64a()

	for _, v := range values {
		switch v.Kind {
		case value.Null:
			h.Write([]byte{0})
		case value.Integer:
			h.Write([]byte{1})
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(v.Integer))
			h.Write(buf[:])
		case value.Real:
			h.Write([]byte{2})
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.Real))
			h.Write(buf[:])
		case value.Text:
			h.Write([]byte{3})
			h.Write([]byte(v.Text))
		case value.Blob:
			h.Write([]byte{4})
			h.Write(v.Blob)
		}
	}

	return ID(h.Sum64())
}
