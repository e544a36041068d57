package logs_core

import (
	"encoding/json"
	"strings"
)

// DetectPropertyType tags a structured payload as JSON or XML so the UI
// knows how to decode it. Backends that store an explicit tag keep it;
// this is the fallback for stores that only keep the raw text.
func DetectPropertyType(payload string) PropertyType {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "<") {
		return PropertyTypeXML
	}
	return PropertyTypeJSON
}

// CanonicalJSON re-encodes a decoded payload so that logically identical
// metadata stored by different backends serializes to the same bytes
// (encoding/json writes map keys in sorted order).
func CanonicalJSON(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}
