package admin

import (
	"bytes"
	"encoding/json"
)

// RawJSON is an opaque JSON value returned by the Admin API.
//
// Detail lookups and accessor methods hand it back untouched; only the entity
// readers pick fields out of it, still as RawJSON.
type RawJSON json.RawMessage

var jsonNull = []byte("null")

// MarshalJSON returns r verbatim, or null when r is empty.
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return jsonNull, nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of data.
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// IsNull reports whether r is empty or the JSON literal null.
func (r RawJSON) IsNull() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

// Decode unmarshals r into v. A null value leaves v untouched.
func (r RawJSON) Decode(v any) error {
	if r.IsNull() {
		return nil
	}
	return json.Unmarshal(r, v)
}

// Text returns the decoded string when r is a JSON string.
func (r RawJSON) Text() (string, bool) {
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

// IsArray reports whether r is a JSON array.
func (r RawJSON) IsArray() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// IsObject reports whether r is a JSON object.
func (r RawJSON) IsObject() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// rawFromBody turns a successful response body into a RawJSON value.
// Empty bodies become null and non-JSON bodies become a JSON string.
func rawFromBody(body []byte) (RawJSON, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return RawJSON(jsonNull), nil
	}
	if json.Valid(trimmed) {
		out := make(RawJSON, len(trimmed))
		copy(out, trimmed)
		return out, nil
	}
	encoded, err := json.Marshal(string(body))
	if err != nil {
		return nil, err
	}
	return RawJSON(encoded), nil
}
