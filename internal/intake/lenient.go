package intake

import (
	"bytes"
	"encoding/json"
	"strings"
)

// looseString accepts a JSON string, number or bool. Any other shape
// decodes to the empty string instead of failing the payload.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	*s = looseString(scalarText(data))
	return nil
}

func (s looseString) String() string { return string(s) }

// scalarText renders a scalar JSON value as text; objects, arrays and null
// yield "".
func scalarText(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(data)
	}
}

// dropdownRef is a GLPI dropdown field. Expanded dropdowns arrive as an
// object; unexpanded ones as a bare id.
type dropdownRef struct {
	ID    looseString `json:"id"`
	Name  looseString `json:"name"`
	Email looseString `json:"email"`
}

func (d *dropdownRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain dropdownRef
		var p plain
		if err := json.Unmarshal(data, &p); err == nil {
			*d = dropdownRef(p)
		}
		return nil
	}
	*d = dropdownRef{ID: looseString(scalarText(data))}
	return nil
}

// ContextValues is caller context attached to an intake. Scalar values are
// kept as text; nested objects, arrays and nulls are dropped. A context
// that is not an object decodes to nil.
type ContextValues map[string]string

func (c *ContextValues) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		*c = nil
		return nil
	}
	out := make(ContextValues, len(fields))
	for k, v := range fields {
		if text := scalarText(v); text != "" {
			out[strings.TrimSpace(k)] = text
		}
	}
	*c = out
	return nil
}
