package hmac

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// value is a decoded JSON value that remembers the order in which object members were
// encountered, which encoding/json discards when decoding into a map
type value struct {
	kind    valueKind
	boolean bool
	number  float64
	str     string
	elems   []*value
	members []member
}

type member struct {
	key   string
	value *value
}

// parseValue decodes a single JSON value, rejecting any trailing data
func parseValue(data []byte) (*value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			return decodeObject(dec)
		}
		if t == '[' {
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter '%v'", t)
	case string:
		return &value{kind: kindString, str: t}, nil
	case json.Number:
		f, err := parseNumber(t)
		if err != nil {
			return nil, err
		}
		return &value{kind: kindNumber, number: f}, nil
	case bool:
		return &value{kind: kindBool, boolean: t}, nil
	case nil:
		return &value{kind: kindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (*value, error) {
	v := &value{kind: kindObject}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		elem, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		// A repeated key keeps its original position but takes the later value
		if i, ok := index[key]; ok {
			v.members[i].value = elem
			continue
		}
		index[key] = len(v.members)
		v.members = append(v.members, member{key: key, value: elem})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeArray(dec *json.Decoder) (*value, error) {
	v := &value{kind: kindArray}
	for dec.More() {
		elem, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		v.elems = append(v.elems, elem)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

// parseNumber converts a JSON number to a float64; numbers too large to represent
// become ±Inf rather than failing
func parseNumber(n json.Number) (float64, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f, nil
		}
		return 0, err
	}
	return f, nil
}

// isEmpty reports whether the value has no enumerable keys in JavaScript terms: only
// non-empty objects, arrays, and strings have any
func (v *value) isEmpty() bool {
	switch v.kind {
	case kindObject:
		return len(v.members) == 0
	case kindArray:
		return len(v.elems) == 0
	case kindString:
		return v.str == ""
	}
	return true
}

// text returns the value as JavaScript would convert it to a string
func (v *value) text() string {
	switch v.kind {
	case kindBool:
		return strconv.FormatBool(v.boolean)
	case kindNumber:
		return formatNumber(v.number)
	case kindString:
		return v.str
	case kindArray:
		parts := make([]string, len(v.elems))
		for i, elem := range v.elems {
			if elem.kind != kindNull {
				parts[i] = elem.text()
			}
		}
		return strings.Join(parts, ",")
	case kindObject:
		return "[object Object]"
	}
	return "null"
}

// stringify writes the value in compact form, byte-for-byte as JSON.stringify would
// re-serialize it after JSON.parse
func (v *value) stringify(b *strings.Builder) {
	switch v.kind {
	case kindNull:
		b.WriteString("null")
	case kindBool:
		b.WriteString(strconv.FormatBool(v.boolean))
	case kindNumber:
		if math.IsInf(v.number, 0) || math.IsNaN(v.number) {
			b.WriteString("null")
		} else {
			b.WriteString(formatNumber(v.number))
		}
	case kindString:
		writeQuoted(b, v.str)
	case kindArray:
		b.WriteByte('[')
		for i, elem := range v.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			elem.stringify(b)
		}
		b.WriteByte(']')
	case kindObject:
		b.WriteByte('{')
		for i, m := range v.orderedMembers() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, m.key)
			b.WriteByte(':')
			m.value.stringify(b)
		}
		b.WriteByte('}')
	}
}

// orderedMembers returns object members in JavaScript property order: array-index keys
// first, in ascending numeric order, followed by all other keys in insertion order
func (v *value) orderedMembers() []member {
	indexed := make([]member, 0)
	named := make([]member, 0, len(v.members))
	for _, m := range v.members {
		if isArrayIndex(m.key) {
			indexed = append(indexed, m)
		} else {
			named = append(named, m)
		}
	}
	if len(indexed) == 0 {
		return named
	}
	sort.Slice(indexed, func(i, j int) bool {
		a, _ := strconv.ParseUint(indexed[i].key, 10, 64)
		b, _ := strconv.ParseUint(indexed[j].key, 10, 64)
		return a < b
	})
	return append(indexed, named...)
}

// isArrayIndex reports whether key is the canonical decimal form of an integer in
// [0, 2^32-2]
func isArrayIndex(key string) bool {
	if key == "0" {
		return true
	}
	if len(key) == 0 || len(key) > 10 || key[0] == '0' {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	return err == nil && n < math.MaxUint32
}

// formatNumber renders f the way JavaScript's Number.prototype.toString does: the
// shortest round-tripping digits, in plain decimal notation for magnitudes between
// 1e-7 and 1e21 and in exponent notation otherwise
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// Shortest digits d1.d2d3...e±x, so that f = 0.d1d2d3... * 10^n with n = x+1
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)
	k := len(digits)
	n := e + 1

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}

	expSign := "+"
	if n-1 < 0 {
		expSign = "-"
	}
	expText := strconv.Itoa(abs(n - 1))
	if k == 1 {
		return sign + digits + "e" + expSign + expText
	}
	return sign + digits[:1] + "." + digits[1:] + "e" + expSign + expText
}

// writeQuoted writes s as a JSON string literal, escaping only what JSON.stringify
// escapes: quotes, backslashes, and control characters
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
