// Package agentcfg holds the agent's JSON-encoded settings documents:
// pipeline/channel/knowledge-base configuration and the CRM field data
// with its ordered update-rule lists. All double-encoding tolerance
// lives here, at the data-access boundary; the rest of the system only
// ever sees normalized values.
package agentcfg

import (
	"encoding/json"
)

// NormalizeBlob recovers a settings object from whatever shape a legacy
// row carries. Plain objects pass through unchanged; JSON strings are
// parsed, including the historical double-encoded form (a JSON string
// whose content is itself a JSON document). Anything malformed yields
// nil rather than an error: a broken blob means "no settings", not a
// failed request.
func NormalizeBlob(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case string:
		return normalizeString(t)
	case []byte:
		return normalizeString(string(t))
	case json.RawMessage:
		return normalizeString(string(t))
	}
	return nil
}

func normalizeString(raw string) map[string]any {
	if raw == "" {
		return nil
	}

	var first any
	if err := json.Unmarshal([]byte(raw), &first); err != nil {
		return nil
	}

	switch t := first.(type) {
	case map[string]any:
		return t
	case string:
		// One legacy layer of string-encoding.
		var second any
		if err := json.Unmarshal([]byte(t), &second); err != nil {
			return nil
		}
		if obj, ok := second.(map[string]any); ok {
			return obj
		}
	}
	return nil
}

// DecodeBlob normalizes a stored blob and then binds it onto a typed
// settings struct. A nil normalization leaves dst at its zero value.
func DecodeBlob(v any, dst any) error {
	obj := NormalizeBlob(v)
	if obj == nil {
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// EncodeBlob serializes a settings struct for its text column. Writes
// always store single-encoded JSON; the double-encoded form is read-only
// compatibility.
func EncodeBlob(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
