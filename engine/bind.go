package engine

import (
	"encoding/json"
	"errors"
	"io"
)

// BindJSON decodes the request body as JSON into v.
// By default the decoder rejects unknown fields that do not map to exported
// struct fields. Pass true to allow unknown fields.
// Exactly one JSON value must be present in the body; trailing data is an
// error. Unlike the ParseBody middleware, a failed bind writes nothing —
// the caller decides how to answer.
func (c *Context) BindJSON(v any, allowUnknownFields ...bool) error {
	dec := json.NewDecoder(c.request.Body)

	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data after JSON value")
	}

	return nil
}
