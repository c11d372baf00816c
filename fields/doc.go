// Package fields implements character-level parsers for URL query strings
// and Cookie request headers, without delegating to net/url or net/http.
//
// Both parsers are single-pass state machines with two lexical states,
// reading-key and reading-value, separated by "=". Percent escapes
// (RFC 3986 Section 2.1) are decoded inline wherever they occur in keys and
// values; a malformed escape is a hard parse failure rather than a literal.
//
// # Query Strings
//
// Entries are separated by "&" or ";". A key without a value is a flag and,
// under coercion, yields true:
//
//	m, err := fields.ParseQuery("page=2&verbose&name=j%C3%B8rn", true)
//	// m["page"] == int64(2), m["verbose"] == true, m["name"] == "jørn"
//
// # Cookie Headers
//
// Entries are separated by "; " (the space is mandatory and consumed); a
// lone ";" as the final byte is accepted. A key with a missing value at the
// end of input is malformed:
//
//	m, err := fields.ParseCookies("session=abc123; admin=true", true)
//	// m["session"] == "abc123", m["admin"] == true
//
// # Type Coercion
//
// With coercion enabled, "true" and "false" become booleans and values that
// are entirely a decimal numeral become int64 (float64 when a fraction is
// present). Everything else stays a string. Coerce is exported for callers
// that parse values from other sources.
//
// # Failure Signalling
//
// Malformed input is reported through wrapped sentinel errors (ErrBadEscape,
// ErrEmptyKey, ErrDanglingValue, ErrBadSeparator) and is distinct from empty
// input, which yields an empty map and a nil error. Duplicate keys are not
// detected; the last occurrence wins.
package fields
