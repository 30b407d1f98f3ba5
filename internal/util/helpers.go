package util

import (
	"encoding/json"

	"github.com/dop251/goja"
)

// IsUndefined checks if a goja value is undefined.
func IsUndefined(val goja.Value) bool {
	return val == nil || val == goja.Undefined()
}

// IsNull checks if a goja value is null.
func IsNull(val goja.Value) bool {
	return val == nil || val == goja.Null()
}

// Clone creates a deep copy of a JSON-serializable value.
func Clone(src interface{}) interface{} {
	if src == nil {
		return nil
	}

	data, err := json.Marshal(src)
	if err != nil {
		return src
	}

	var dst interface{}
	if err := json.Unmarshal(data, &dst); err != nil {
		return src
	}

	return dst
}

// MergeHeaders overlays one header map over another, key by key. Later
// maps win. Nil inputs are fine; the result is always a fresh map.
func MergeHeaders(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// Contains checks if a slice contains a value.
func Contains(slice []string, value string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// ToJSON converts a value to a JSON string, or "" on failure.
func ToJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
