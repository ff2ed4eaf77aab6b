package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// decode parses data keeping numbers as json.Number so they print exactly
// as the backend sent them. It returns nil for invalid JSON.
func decode(data []byte) any {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func array(v any) []any {
	a, _ := v.([]any)
	return a
}

// present reports whether key exists with a non-null value.
func present(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// stringify renders a decoded JSON value as display text. Strings come out
// unquoted, numbers in their original form, null as "null", and composite
// values as compact JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// lookupFold returns the first non-null value among keys, matching keys
// case-insensitively. Exact matches win over folded ones.
func lookupFold(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if present(m, k) {
			return m[k], true
		}
	}
	for _, k := range keys {
		for mk, v := range m {
			if v != nil && strings.EqualFold(mk, k) {
				return v, true
			}
		}
	}
	return nil, false
}

func stringList(v any) []string {
	items := array(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringify(item))
	}
	return out
}
