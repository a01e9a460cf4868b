package importer

import "math"

// SanitizeJSON walks an arbitrary payload and replaces NaN and infinite
// float values with nil so the result always JSON-encodes cleanly. Maps
// and slices are rewritten in place where possible.
func SanitizeJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = SanitizeJSON(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = SanitizeJSON(item)
		}
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return val
	default:
		return v
	}
}
