// Package value implements the reversible text encoding for the five
// SQLite storage classes (null, integer, real, text, blob).
package value

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which of the five SQLite storage classes a Value holds.
type Kind int

const (
	Null Kind = iota
	Integer
	Real
	Text
	Blob
)

// Value is a closed tagged union over the five storage classes. Only the
// field matching Kind is meaningful; the others are zero.
type Value struct {
	Kind    Kind
	Integer int64
	Real    float64
	Text    string
	Blob    []byte
}

func OfNull() Value                { return Value{Kind: Null} }
func OfInteger(n int64) Value      { return Value{Kind: Integer, Integer: n} }
func OfReal(f float64) Value       { return Value{Kind: Real, Real: f} }
func OfText(s string) Value        { return Value{Kind: Text, Text: s} }
func OfBlob(b []byte) Value        { return Value{Kind: Blob, Blob: b} }

// Encode renders v as the single-line text token described in §4.1.
func Encode(v Value) string {
	switch v.Kind {
	case Null:
		return "null"
	case Integer:
		return strconv.FormatInt(v.Integer, 10)
	case Real:
		// 'f' (never scientific notation) with the shortest digit count
		// that round-trips, matching the Rust original's plain Display.
		s := strconv.FormatFloat(v.Real, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case Text:
		return encodeText(v.Text)
	case Blob:
		return "b" + base64.StdEncoding.EncodeToString(v.Blob)
	default:
		panic(fmt.Sprintf("value: unknown kind %d", v.Kind))
	}
}

func encodeText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Decode parses a single-line text token back into a Value, or reports the
// first reason it couldn't.
func Decode(s string) (Value, error) {
	if s == "" {
		return Value{}, fmt.Errorf("value: empty token")
	}

	switch s[0] {
	case 'n':
		if s != "null" {
			return Value{}, fmt.Errorf("value: %q is not \"null\"", s)
		}
		return OfNull(), nil

	case '"':
		text, end, err := ReadStringLiteral([]byte(s))
		if err != nil {
			return Value{}, err
		}
		if end != len(s)-1 {
			return Value{}, fmt.Errorf("value: trailing bytes after closing quote in %q", s)
		}
		return OfText(text), nil

	case 'b':
		raw, err := base64.StdEncoding.DecodeString(s[1:])
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid base64 blob %q: %w", s, err)
		}
		return OfBlob(raw), nil

	default:
		if isDigitOrMinus(s[0]) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return OfInteger(n), nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return OfReal(f), nil
			}
			return Value{}, fmt.Errorf("value: %q is neither a valid integer nor a real", s)
		}
		return Value{}, fmt.Errorf("value: unrecognized leading byte %q in %q", s[0], s)
	}
}

func isDigitOrMinus(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-'
}

// Equal reports whether a and b have the same kind and payload. Real
// equality is bitwise: a NaN equals a NaN with the same bit pattern, and
// -0.0 differs from 0.0.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Integer:
		return a.Integer == b.Integer
	case Real:
		return math.Float64bits(a.Real) == math.Float64bits(b.Real)
	case Text:
		return a.Text == b.Text
	case Blob:
		return string(a.Blob) == string(b.Blob)
	default:
		return false
	}
}
