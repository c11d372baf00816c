package fields

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadEscape is returned when a percent escape is not followed by exactly
// two hexadecimal digits.
var ErrBadEscape = errors.New("fields: malformed percent escape")

// ErrEmptyKey is returned when a key is empty at an entry boundary,
// for example "=1" or "a=1&&b=2".
var ErrEmptyKey = errors.New("fields: empty key")

// ErrDanglingValue is returned when a cookie string ends with a key that has
// no value, for example "k=" or a bare "k".
var ErrDanglingValue = errors.New("fields: missing value at end of input")

// ErrBadSeparator is returned when a cookie entry separator ";" is not
// followed by a single space.
var ErrBadSeparator = errors.New("fields: expected space after cookie separator")

// parser states for the key/value state machine.
const (
	readingKey = iota
	readingValue
)

// ParseQuery parses a URL query string into a key/value map. Entries are
// separated by "&" or ";", keys and values by "=". Percent escapes ("%XX")
// are decoded inline wherever they occur.
//
// When coerce is true, values are converted per Coerce; a key with no value
// ("a" in "a&b=1") coerces to true. When coerce is false all values are
// strings.
//
// Duplicate keys are overwritten; the last occurrence wins. An empty input
// yields an empty, non-nil map and no error.
func ParseQuery(s string, coerce bool) (map[string]any, error) {
	out := make(map[string]any)
	var key, val strings.Builder
	state := readingKey

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '%':
			b, err := decodeEscape(s, i)
			if err != nil {
				return nil, err
			}
			if state == readingKey {
				key.WriteByte(b)
			} else {
				val.WriteByte(b)
			}
			i += 2

		case state == readingKey && ch == '=':
			if key.Len() == 0 {
				return nil, fmt.Errorf("%w at byte %d", ErrEmptyKey, i)
			}
			state = readingValue

		case ch == '&' || ch == ';':
			if state == readingKey && key.Len() == 0 {
				return nil, fmt.Errorf("%w at byte %d", ErrEmptyKey, i)
			}
			commitQuery(out, key.String(), val.String(), coerce)
			key.Reset()
			val.Reset()
			state = readingKey

		default:
			if state == readingKey {
				key.WriteByte(ch)
			} else {
				val.WriteByte(ch)
			}
		}
	}

	// A trailing separator leaves an empty key behind; that is not an entry.
	if key.Len() > 0 || state == readingValue {
		commitQuery(out, key.String(), val.String(), coerce)
	}

	return out, nil
}

// ParseCookies parses a Cookie header value into a key/value map. Entries are
// separated by ";" followed by a single space, which is also consumed; a ";"
// as the final byte of input is accepted. Percent escapes are decoded inline.
//
// A key without a value, or an empty value at the end of input ("k="), is
// malformed. When coerce is true, values are converted per Coerce (an empty
// mid-string value stays a string).
//
// An empty input yields an empty, non-nil map and no error.
func ParseCookies(s string, coerce bool) (map[string]any, error) {
	out := make(map[string]any)
	var key, val strings.Builder
	state := readingKey

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '%':
			b, err := decodeEscape(s, i)
			if err != nil {
				return nil, err
			}
			if state == readingKey {
				key.WriteByte(b)
			} else {
				val.WriteByte(b)
			}
			i += 2

		case state == readingKey && ch == '=':
			if key.Len() == 0 {
				return nil, fmt.Errorf("%w at byte %d", ErrEmptyKey, i)
			}
			state = readingValue

		case ch == ';':
			if state == readingKey {
				if key.Len() == 0 {
					return nil, fmt.Errorf("%w at byte %d", ErrEmptyKey, i)
				}
				return nil, fmt.Errorf("%w: key %q", ErrDanglingValue, key.String())
			}
			commitCookie(out, key.String(), val.String(), coerce)
			key.Reset()
			val.Reset()
			state = readingKey
			if i+1 < len(s) {
				if s[i+1] != ' ' {
					return nil, fmt.Errorf("%w at byte %d", ErrBadSeparator, i+1)
				}
				i++
			}

		default:
			if state == readingKey {
				key.WriteByte(ch)
			} else {
				val.WriteByte(ch)
			}
		}
	}

	switch {
	case state == readingValue:
		if val.Len() == 0 {
			return nil, fmt.Errorf("%w: key %q", ErrDanglingValue, key.String())
		}
		commitCookie(out, key.String(), val.String(), coerce)
	case key.Len() > 0:
		return nil, fmt.Errorf("%w: key %q", ErrDanglingValue, key.String())
	}

	return out, nil
}

// Coerce converts a literal field value to its typed form: "true" and "false"
// become booleans, values that are entirely a decimal numeral become int64
// (float64 when a fraction is present), everything else stays a string.
func Coerce(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}

	if isNumeral(v) {
		if strings.ContainsRune(v, '.') {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			return v
		}

		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	return v
}

// commitQuery stores a parsed query pair, overwriting any previous value for
// the same key. A valueless key coerces to true, mirroring flag-style query
// parameters such as "?verbose".
func commitQuery(out map[string]any, key, val string, coerce bool) {
	if !coerce {
		out[key] = val
		return
	}

	if val == "" {
		out[key] = true
		return
	}

	out[key] = Coerce(val)
}

// commitCookie stores a parsed cookie pair, overwriting any previous value
// for the same key.
func commitCookie(out map[string]any, key, val string, coerce bool) {
	if !coerce {
		out[key] = val
		return
	}

	out[key] = Coerce(val)
}

// decodeEscape decodes the percent escape starting at s[i] ('%'). The escape
// must be followed by exactly two hexadecimal digits.
func decodeEscape(s string, i int) (byte, error) {
	if i+2 >= len(s) {
		return 0, fmt.Errorf("%w at byte %d", ErrBadEscape, i)
	}

	hi, ok1 := hexDigit(s[i+1])
	lo, ok2 := hexDigit(s[i+2])
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%w at byte %d", ErrBadEscape, i)
	}

	return hi<<4 | lo, nil
}

// hexDigit returns the value of a hexadecimal digit character.
func hexDigit(ch byte) (byte, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10, true
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10, true
	}
	return 0, false
}

// isNumeral reports whether v is entirely a decimal numeral: an optional
// leading minus sign, at least one digit, and at most one decimal point.
func isNumeral(v string) bool {
	if v == "" {
		return false
	}

	start := 0
	if v[0] == '-' {
		start = 1
	}

	digits := 0
	dots := 0
	for i := start; i < len(v); i++ {
		switch {
		case v[i] >= '0' && v[i] <= '9':
			digits++
		case v[i] == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}

	return digits > 0
}
