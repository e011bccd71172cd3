package record

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/k0kubun/sqligit/sqligiterr"
	"github.com/k0kubun/sqligit/value"
)

// Field is one (column-name, value) pair within a Record, in table-column
// order.
type Field struct {
	Name  string
	Value value.Value
}

// Record is one row: an identifier plus its fields.
type Record struct {
	ID     ID
	Fields []Field
}

// SortByID sorts records ascending by identifier in place, the order the
// bucket file grammar requires.
func SortByID(records []Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
}

// Encode renders a sequence of records as the bucket file grammar of §4.5:
// one block per record, each terminated by a blank line (including the
// last — a trailing blank line is harmless and simplifies concatenation
// across repeated flushes).
func Encode(records []Record) []byte {
	var buf bytes.Buffer
	for _, r := range records {
		fmt.Fprintf(&buf, "%016x\n", uint64(r.ID))
		for _, f := range r.Fields {
			buf.WriteString(value.Encode(value.OfText(f.Name)))
			buf.WriteByte('=')
			buf.WriteString(value.Encode(f.Value))
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode parses the bucket file grammar of §4.5 from raw bytes, returning a
// CorruptedDataFile error (via sqligiterr) on any grammar violation, except
// that a blob token whose base64 fails to decode is reported as a
// Base64DecodeError.
func Decode(path string, data []byte) ([]Record, error) {
	var records []Record
	var fields []Field
	var id *ID
	haveID := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if !haveID {
				return nil, sqligiterr.Corrupted(path, "blank line without a preceding id")
			}
			records = append(records, Record{ID: *id, Fields: fields})
			id = nil
			haveID = false
			fields = nil
			continue
		}

		switch c := line[0]; {
		case c == '"':
			if !haveID {
				return nil, sqligiterr.Corrupted(path, "field line %q before any id", line)
			}
			f, err := parseFieldLine(path, line)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)

		case isHexDigit(c):
			if haveID {
				return nil, sqligiterr.Corrupted(path, "id %q appears twice without an intervening blank line", line)
			}
			n, err := parseHexID(line)
			if err != nil {
				return nil, sqligiterr.Corrupted(path, "malformed id %q: %s", line, err)
			}
			v := ID(n)
			id = &v
			haveID = true

		default:
			return nil, sqligiterr.Corrupted(path, "unexpected first byte %q on line %q", string(c), line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, sqligiterr.Filesystem("scan", path, err)
	}

	// The grammar permits the final record to omit its trailing blank line.
	if haveID {
		records = append(records, Record{ID: *id, Fields: fields})
	}

	return records, nil
}

func parseFieldLine(path, line string) (Field, error) {
	b := []byte(line)
	name, end, err := value.ReadStringLiteral(b)
	if err != nil {
		return Field{}, sqligiterr.Corrupted(path, "malformed field name in %q: %s", line, err)
	}

	rest := b[end+1:]
	if len(rest) == 0 || rest[0] != '=' {
		return Field{}, sqligiterr.Corrupted(path, "expected '=' after field name in %q", line)
	}
	rest = rest[1:]

	if !utf8.Valid(rest) {
		return Field{}, sqligiterr.Corrupted(path, "field value is not valid UTF-8 in %q", line)
	}

	v, err := value.Decode(string(rest))
	if err != nil {
		if len(rest) > 0 && rest[0] == 'b' {
			return Field{}, sqligiterr.Base64(string(rest), err)
		}
		return Field{}, sqligiterr.Corrupted(path, "malformed value in %q: %s", line, err)
	}

	return Field{Name: name, Value: v}, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func parseHexID(s string) (uint64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("id must be 16 hex digits, got %d", len(s))
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		n <<= 4
		switch {
		case c >= '0' && c <= '9':
			n |= uint64(c - '0')
		case c >= 'a' && c <= 'f':
			n |= uint64(c-'a') + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", string(c))
		}
	}
	return n, nil
}
