package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/stagewire/cuemesh/internal/cue"
	"github.com/stagewire/cuemesh/internal/fleet"
)

// marker prefixes every encoded record. Fetch output mixes records with
// quoting punctuation and MAC address fields; only segments carrying the
// marker are candidate records.
const marker = "cuewire1:"

// recordSeparator is the delimiter the daemon's storage format places
// between records: the closing quote of one record's payload field and the
// comma before the next field.
var recordSeparator = []byte(`",`)

// envelope wraps the transmitted value so gob can carry any registered
// domain type through a single interface field.
type envelope struct {
	V any
}

func init() {
	gob.Register(time.Time{})
	gob.Register([]cue.Attribute{})
	gob.Register([]cue.State{})
	gob.Register([]cue.Cue{})
	gob.Register(fleet.Report{})
	gob.Register([]fleet.Report{})
}

// Encode serialises a domain value into one wire record.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelope{V: v}); err != nil {
		return nil, fmt.Errorf("encoding wire record: %w", err)
	}
	out := make([]byte, 0, len(marker)+base64.StdEncoding.EncodedLen(buf.Len()))
	out = append(out, marker...)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(buf.Len()))
	base64.StdEncoding.Encode(encoded, buf.Bytes())
	return append(out, encoded...), nil
}

// Decode extracts every intact record from a daemon fetch response.
//
// The response may hold zero or more concatenated records, each escaped by
// the daemon's text output. Decode unescapes, splits on the record
// delimiter, discards delimiter artifacts and segments without the content
// marker, and deserialises the survivors independently, dropping any that
// fail. It returns an empty slice on total failure, never an error.
func Decode(blob []byte) []any {
	// The daemon escapes twice on its way to text output; unescape twice.
	raw := unescape(unescape(blob))

	var values []any
	for _, segment := range bytes.Split(raw, recordSeparator) {
		i := bytes.Index(segment, []byte(marker))
		if i < 0 {
			continue
		}
		record := trimToBase64(segment[i+len(marker):])
		if len(record) == 0 {
			continue
		}
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(record)))
		n, err := base64.StdEncoding.Decode(decoded, record)
		if err != nil {
			continue
		}
		var env envelope
		if err := gob.NewDecoder(bytes.NewReader(decoded[:n])).Decode(&env); err != nil {
			continue
		}
		values = append(values, env.V)
	}
	return values
}

// unescape reverses one layer of backslash escaping (\xHH, \\, \", \n, \r,
// \t). Unrecognised escapes are kept verbatim.
func unescape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		switch b[i+1] {
		case 'x':
			if i+3 < len(b) {
				hi, okHi := hexVal(b[i+2])
				lo, okLo := hexVal(b[i+3])
				if okHi && okLo {
					out = append(out, hi<<4|lo)
					i += 3
					continue
				}
			}
			out = append(out, b[i])
		case '\\':
			out = append(out, '\\')
			i++
		case '"':
			out = append(out, '"')
			i++
		case 'n':
			out = append(out, '\n')
			i++
		case 'r':
			out = append(out, '\r')
			i++
		case 't':
			out = append(out, '\t')
			i++
		default:
			out = append(out, b[i])
		}
	}
	return out
}

// trimToBase64 cuts a segment down to its leading run of base64 characters,
// dropping the quoting and whitespace the daemon appends after the payload.
func trimToBase64(b []byte) []byte {
	end := 0
	for end < len(b) && isBase64(b[end]) {
		end++
	}
	return b[:end]
}

func isBase64(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '+' || c == '/' || c == '='
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
