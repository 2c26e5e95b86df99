package vector

import (
	"bytes"
	"encoding/json"
)

// EncodeMetadata serializes flat metadata for stores that keep it as JSON.
func EncodeMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// DecodeMetadata is the inverse of EncodeMetadata. Whole numbers come back
// as int64 and other numbers as float64. Malformed input yields an empty map.
func DecodeMetadata(raw []byte) map[string]any {
	m := map[string]any{}
	if len(raw) == 0 {
		return m
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return map[string]any{}
	}

	for k, v := range m {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			m[k] = i
		} else if f, err := n.Float64(); err == nil {
			m[k] = f
		}
	}
	return m
}
