package hmac

import (
	"encoding/json"
	"fmt"
)

// RequestDescription describes an outbound request to be signed. It's decoded from
// JSON objects of the form {"uri": ..., "qs": {...}, "headers": {...}, "body": ...}.
type RequestDescription struct {
	// URI is the absolute URI of the request: only its path is signed
	URI string `json:"uri"`

	// Query holds the request's query parameters, which are signed in sorted order
	// regardless of the order in which they're supplied
	Query QueryParams `json:"qs,omitempty"`

	// Headers holds the request headers; only 'content-type' is consulted
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the JSON payload of the request, if any. It's kept as raw JSON so that
	// the order of object members is preserved for signing.
	Body json.RawMessage `json:"body,omitempty"`
}

// QueryParams maps query parameter names to values
type QueryParams map[string]string

// UnmarshalJSON accepts parameter values of any JSON type: values that aren't strings
// are converted to the text that a JavaScript client would interpolate for them, so
// that {"page": 2} signs the same as {"page": "2"}
func (q *QueryParams) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*q = nil
		return nil
	}

	params := make(QueryParams, len(raw))
	for key, rawValue := range raw {
		v, err := parseValue(rawValue)
		if err != nil {
			return fmt.Errorf("failed to parse value of query parameter '%s': %w", key, err)
		}
		params[key] = v.text()
	}
	*q = params
	return nil
}
