package pathsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapePreservesSafeCharacters(t *testing.T) {
	assert.Equal(t, "users_2024-01.v1", Escape("users_2024-01.v1"))
}

func TestEscapeEscapesSlashesAndSpaces(t *testing.T) {
	got := Escape("a/b c")
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, " ")
}

func TestEscapeEscapesDelimiterItself(t *testing.T) {
	got := Escape("$")
	assert.Equal(t, "$24$", got)
}

func TestEscapePreservesHangul(t *testing.T) {
	assert.Equal(t, "한글", Escape("한글"))
}

func TestEscapeIsInjective(t *testing.T) {
	inputs := []string{"table", "ta/ble", "ta$ble", "ta 24 ble", "$24$", "a.b", "a/b"}
	seen := map[string]string{}
	for _, in := range inputs {
		out := Escape(in)
		if existing, ok := seen[out]; ok {
			assert.Equal(t, existing, in, "collision: %q and %q both escape to %q", existing, in, out)
		}
		seen[out] = in
	}
}

func TestEscapeOutputOnlySafeCharacters(t *testing.T) {
	for _, r := range Escape("weird/name with spaces & 日本語") {
		safe := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			r == '_' || r == '-' || r == '.' || r == '$'
		assert.True(t, safe, "unsafe rune %q in escaped output", r)
	}
}
