package mcpserver

import (
	"encoding/json"
	"fmt"
)

// parseObject decodes an optional JSON-object argument. Agents may pass
// either an object or its JSON text.
func parseObject(args map[string]any, key string, target any) (bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return false, nil
	}
	var data []byte
	switch v := raw.(type) {
	case string:
		if v == "" {
			return false, nil
		}
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", key, err)
		}
		data = b
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("%s must be a JSON object: %w", key, err)
	}
	return true, nil
}
