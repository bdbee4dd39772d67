package instrument

import (
	"encoding/json"
	"net/http"
	"strings"
)

const masked = "***"

// Masker redacts values whose key matches one of a configured set, case-insensitively.
type Masker struct {
	keys map[string]struct{}
}

func NewMasker(fields []string) *Masker {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keys[f] = struct{}{}
		}
	}
	return &Masker{keys: keys}
}

func (m *Masker) Empty() bool {
	return m == nil || len(m.keys) == 0
}

func (m *Masker) Match(key string) bool {
	if m.Empty() {
		return false
	}
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Value walks decoded JSON (maps and slices) and masks matching keys.
func (m *Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Match(k) {
				out[k] = masked
				continue
			}
			out[k] = m.Value(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = inner
		}
		return m.Value(out)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Value(inner)
		}
		return out
	default:
		return v
	}
}

// JSON masks a JSON document. ok is false when payload is not an object or array.
func (m *Masker) JSON(payload []byte) (out []byte, ok bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false
	}

	out, err := json.Marshal(m.Value(doc))
	return out, err == nil
}

func (m *Masker) Headers(h http.Header) http.Header {
	if m.Empty() {
		return h
	}

	out := h.Clone()
	for k := range out {
		if m.Match(k) {
			out.Set(k, masked)
		}
	}
	return out
}
