package record

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k0kubun/sqligit/value"
)

func TestHashIsStableAcrossCalls(t *testing.T) {
	values := []value.Value{value.OfInteger(42), value.OfText("alice")}
	a := Hash(values)
	b := Hash(values)
	assert.Equal(t, a, b)
}

func TestHashDistinguishesDifferentInputs(t *testing.T) {
	a := Hash([]value.Value{value.OfInteger(1)})
	b := Hash([]value.Value{value.OfInteger(2)})
	assert.NotEqual(t, a, b)
}

func TestHashDistinguishesKind(t *testing.T) {
	a := Hash([]value.Value{value.OfInteger(0)})
	b := Hash([]value.Value{value.OfReal(0)})
	assert.NotEqual(t, a, b)
}

func TestPrefixIsTopNineBits(t *testing.T) {
	id := ID(1 << 63)
	assert.Equal(t, uint64(256), id.Prefix())
}

func TestPrefixRangeIsFiveTwelveWay(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := Hash([]value.Value{value.OfInteger(int64(i))})
		assert.Less(t, id.Prefix(), uint64(512))
	}
}
