package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformSlice(t *testing.T) {
	in := []int{1, 2, 3}
	out := TransformSlice(in, func(n int) string {
		return string(rune('a' + n))
	})
	assert.Equal(t, []string{"b", "c", "d"}, out)
}

func TestCanonicalMapIterYieldsSortedKeys(t *testing.T) {
	m := map[string]int{"zebra": 1, "ant": 2, "monkey": 3}

	var keys []string
	for k := range CanonicalMapIter(m) {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"ant", "monkey", "zebra"}, keys)
}

func TestCanonicalMapIterOrderedYieldsSortedKeys(t *testing.T) {
	m := map[uint64][]int{5: {1}, 1: {2}, 3: {3}}

	var keys []uint64
	for k := range CanonicalMapIterOrdered(m) {
		keys = append(keys, k)
	}
	assert.Equal(t, []uint64{1, 3, 5}, keys)
}

func TestCanonicalMapIterOrderedCanStopEarly(t *testing.T) {
	m := map[int]int{1: 1, 2: 2, 3: 3}

	var seen []int
	for k := range CanonicalMapIterOrdered(m) {
		seen = append(seen, k)
		if k == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, seen)
}
