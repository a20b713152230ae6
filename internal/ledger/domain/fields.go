package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Fields is a decoded JSON object as submitted by a client.
type Fields map[string]any

// Reserved top-level keys that map onto columns rather than attributes.
const (
	KeyID                  = "_id"
	KeyBuyer               = "buyer"
	KeyEmail               = "email"
	KeyProductName         = "productName"
	KeyRecommendationCount = "recommendationCount"
	KeyQueryID             = "queryId"
	KeyRecommenderEmail    = "recommenderEmail"
	KeyCreatedAt           = "createdAt"
	KeyUpdatedAt           = "updatedAt"
)

func stringField(fields Fields, key string) (string, bool, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	return s, true, nil
}

func nonNegativeInt(key string, v any) (int, error) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return int(f), nil
}

// copyAttributes returns the keys of fields that are not in reserved.
func copyAttributes(fields Fields, reserved ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range reserved {
		delete(out, k)
	}
	return out
}

// normalizeNumbers rewrites json.Number values (as read back from a JSON
// column) into float64, matching what encoding/json yields for a request
// body. Nested objects and arrays are rewritten in place.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}

func normalizeMap(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeNumbers(v)
	}
}
