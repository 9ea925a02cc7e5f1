package valueobjects

import "time"

// Attributes is the open key-value map carried by every node. Values are
// strings, numbers, times, []interface{} lists or nested
// map[string]interface{} maps populated by callers and by deserialization.
type Attributes map[string]interface{}

// NewAttributes creates an empty attribute map
func NewAttributes() Attributes {
	return make(Attributes)
}

// Get returns the value for key, or fallback when the key is absent or nil
func (a Attributes) Get(key string, fallback interface{}) interface{} {
	if v, ok := a[key]; ok && v != nil {
		return v
	}
	return fallback
}

// GetString returns the value for key as a string, or "" when it is not one
func (a Attributes) GetString(key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return ""
}

// GetFloat returns the value for key as a float64 when it carries a
// numeric type, with ok reporting success.
func (a Attributes) GetFloat(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// GetTime returns the value for key as a time.Time, with ok reporting success
func (a Attributes) GetTime(key string) (time.Time, bool) {
	t, ok := a[key].(time.Time)
	return t, ok
}

// Set stores a value under key
func (a Attributes) Set(key string, value interface{}) {
	a[key] = value
}

// Has reports whether key is present with a non-nil value
func (a Attributes) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Delete removes key from the map
func (a Attributes) Delete(key string) {
	delete(a, key)
}

// Clone returns a deep copy: nested maps and slices are copied so that
// no mutable value is shared between nodes.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, inner := range val {
			m[k] = deepCopyValue(inner)
		}
		return m
	case Attributes:
		return map[string]interface{}(val.Clone())
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, inner := range val {
			s[i] = deepCopyValue(inner)
		}
		return s
	case []string:
		s := make([]string, len(val))
		copy(s, val)
		return s
	case []float64:
		s := make([]float64, len(val))
		copy(s, val)
		return s
	default:
		return v
	}
}
