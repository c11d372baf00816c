package engine

// splitSegments splits s on delim, collapsing adjacent delimiters and
// dropping the empty segments a leading or trailing delimiter would produce.
// If the whole input yields no segments (s is empty or consists only of
// delimiters), the original input is returned verbatim as a single segment
// so the result is never empty.
func splitSegments(s string, delim byte) []string {
	var segs []string
	start := 0

	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == delim {
			if i > start {
				segs = append(segs, s[start:i])
			}
			start = i + 1
		}
	}

	if len(segs) == 0 {
		return []string{s}
	}

	return segs
}

// matchSegments matches tokenized request segments against tokenized route
// pattern segments and extracts parameter bindings.
//
// A "*" pattern segment matches the entire remaining request suffix and
// disables the length-equality check for the route, so a wildcard route can
// also match a request with fewer segments than its own position would
// suggest. A "{name}" segment binds the request segment under name. Anything
// else must compare equal byte for byte.
//
// The bindings map is freshly allocated per attempt (nil when the pattern
// has no parameters) and discarded when the match fails.
func matchSegments(req, pattern []string) (map[string]string, bool) {
	wildcard := false
	for _, seg := range pattern {
		if seg == "*" {
			wildcard = true
			break
		}
	}

	if !wildcard && len(req) != len(pattern) {
		return nil, false
	}

	var params map[string]string

	for j, seg := range pattern {
		if seg == "*" {
			return params, true
		}

		if j >= len(req) {
			return nil, false
		}

		if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:len(seg)-1]] = req[j]
			continue
		}

		if req[j] != seg {
			return nil, false
		}
	}

	return params, true
}

// normalizePath ensures the path begins with the path delimiter.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		return "/" + path
	}
	return path
}
