// Package jsonutil centralizes JSON handling for the runtime: deterministic
// marshalling, tool-result normalization, and tolerant extraction of JSON
// objects from model text.
package jsonutil

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json uses sorted map keys and raw HTML so serialized output is byte-stable
// across runs and readable when echoed back into prompts.
var json = jsoniter.Config{
	SortMapKeys:            true,
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// Marshal serializes v with deterministic key order.
func Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// MarshalString is Marshal returning a string.
func MarshalString(v any) (string, error) { return json.MarshalToString(v) }

// MarshalIndent serializes v with deterministic key order and indentation.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses data into v.
func Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// UnmarshalString parses s into v.
func UnmarshalString(s string, v any) error { return json.UnmarshalFromString(s, v) }

// Normalize renders a tool return value as the string handed back to the
// model. Nil becomes the empty string, strings pass through untouched, and
// every other value is serialized as compact JSON; values JSON cannot express
// fall back to their fmt representation.
func Normalize(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	s, err := json.MarshalToString(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}
