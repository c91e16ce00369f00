package types

// JSONMap is a free-form jsonb column. Orders use it for payment gateway
// artifacts (token, authorization code) and fulfillment notes.
type JSONMap map[string]any

// Merge returns a copy of m with the entries of other applied on top.
func (m JSONMap) Merge(other JSONMap) JSONMap {
	merged := make(JSONMap, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// GetString returns the string value stored under key, if any.
func (m JSONMap) GetString(key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
