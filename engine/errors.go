package engine

import "net/http"

// ErrorCode identifies one of the pipeline's built-in error responses.
// The response text for each code is configurable via Engine.SetErrorText;
// the status code is fixed.
type ErrorCode int

const (
	// CodeMalformedBody is sent when the request body fails its parser.
	CodeMalformedBody ErrorCode = iota

	// CodeMalformedQuery is sent when the query string fails its parser.
	CodeMalformedQuery

	// CodeMalformedCookie is sent when the Cookie header fails its parser.
	CodeMalformedCookie

	// CodeNotFound is sent by the default fallback when no route matched.
	CodeNotFound

	// CodeUnsupportedMedia is sent when the request body content type is
	// not recognized by the body parser.
	CodeUnsupportedMedia

	// CodeInternal is sent for dispatch misconfiguration, such as a split
	// handler selector returning an out-of-range index.
	CodeInternal
)

// defaultErrorTexts holds the initial response body for each error code.
var defaultErrorTexts = map[ErrorCode]string{
	CodeMalformedBody:    "malformed request body",
	CodeMalformedQuery:   "malformed query string",
	CodeMalformedCookie:  "malformed cookie header",
	CodeNotFound:         "not found",
	CodeUnsupportedMedia: "unsupported media type",
	CodeInternal:         "internal server error",
}

// Status returns the fixed HTTP status code for the error code.
func (c ErrorCode) Status() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// String returns the config-file name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeMalformedBody:
		return "malformed_body"
	case CodeMalformedQuery:
		return "malformed_query"
	case CodeMalformedCookie:
		return "malformed_cookie"
	case CodeNotFound:
		return "not_found"
	case CodeUnsupportedMedia:
		return "unsupported_media_type"
	case CodeInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// errorCodeNames maps config-file names back to error codes.
var errorCodeNames = map[string]ErrorCode{
	"malformed_body":         CodeMalformedBody,
	"malformed_query":        CodeMalformedQuery,
	"malformed_cookie":       CodeMalformedCookie,
	"not_found":              CodeNotFound,
	"unsupported_media_type": CodeUnsupportedMedia,
	"internal_error":         CodeInternal,
}
