// Package canon implements the stable JSON encoding spec.md §4.6 requires
// for dedupe-key and seed derivation: object keys sorted recursively, floats
// normalized to a fixed decimal form, arrays left in original order.
package canon

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Marshal canonicalizes v (any JSON-marshalable value) into a byte slice
// that is stable across Go map iteration order and encodes identically for
// equal logical values.
func Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshal: %w", err)
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("canon: unmarshal: %w", err)
	}
	var buf []byte
	buf = appendCanonical(buf, decoded)
	return buf, nil
}

func appendCanonical(buf []byte, v interface{}) []byte {
	switch val := v.(type) {
	case nil:
		return append(buf, "null"...)
	case bool:
		if val {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case float64:
		return append(buf, strconv.FormatFloat(val, 'f', -1, 64)...)
	case string:
		encoded, _ := json.Marshal(val)
		return append(buf, encoded...)
	case []interface{}:
		buf = append(buf, '[')
		for i, item := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendCanonical(buf, item)
		}
		return append(buf, ']')
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			encodedKey, _ := json.Marshal(k)
			buf = append(buf, encodedKey...)
			buf = append(buf, ':')
			buf = appendCanonical(buf, val[k])
		}
		return append(buf, '}')
	default:
		// Unreachable for values that round-tripped through encoding/json.
		encoded, _ := json.Marshal(val)
		return append(buf, encoded...)
	}
}
