package models

import "encoding/json"

// DecodeStrings unmarshals a JSON string-array column. Empty or null
// columns decode to nil.
func DecodeStrings(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// EncodeStrings marshals a string slice for a JSON column. Nil and empty
// slices encode to "[]" so the column is always valid JSON.
func EncodeStrings(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// HasString reports whether a JSON string-array column contains val.
func HasString(raw, val string) bool {
	for _, v := range DecodeStrings(raw) {
		if v == val {
			return true
		}
	}
	return false
}
