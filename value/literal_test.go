package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStringLiteralDecodesEscapes(t *testing.T) {
	s, end, err := ReadStringLiteral([]byte(`"a\nb\rc\td\0e"`))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\rc\td\x00e", s)
	assert.Equal(t, len(`"a\nb\rc\td\0e"`)-1, end)
}

func TestReadStringLiteralPassesThroughUnknownEscapes(t *testing.T) {
	s, _, err := ReadStringLiteral([]byte(`"\"\\"`))
	require.NoError(t, err)
	assert.Equal(t, `"\`, s)
}

func TestReadStringLiteralStopsAtFirstUnescapedQuote(t *testing.T) {
	s, end, err := ReadStringLiteral([]byte(`"ab"cd`))
	require.NoError(t, err)
	assert.Equal(t, "ab", s)
	assert.Equal(t, 3, end)
}

func TestReadStringLiteralReturnsErrUnterminatedLiteral(t *testing.T) {
	_, _, err := ReadStringLiteral([]byte(`"abc`))
	assert.ErrorIs(t, err, ErrUnterminatedLiteral)
}

func TestReadStringLiteralRequiresOpeningQuote(t *testing.T) {
	_, _, err := ReadStringLiteral([]byte(`abc"`))
	assert.Error(t, err)
}

func TestReadStringLiteralEmptyInput(t *testing.T) {
	_, _, err := ReadStringLiteral(nil)
	assert.Error(t, err)
}
