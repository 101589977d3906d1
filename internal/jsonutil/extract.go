package jsonutil

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

var (
	// ErrNoObject reports that the text contains no JSON object at all.
	ErrNoObject = errors.New("jsonutil: no JSON object found")
	// ErrBadObject reports an object that stayed unparseable after repair.
	ErrBadObject = errors.New("jsonutil: malformed JSON object")
	// ErrMissingKey reports a parsed object lacking a required key.
	ErrMissingKey = errors.New("jsonutil: required key missing")
)

// Models often wrap their JSON in prose or code fences. The non-greedy match
// grabs the first brace group; truncated nesting is handled by the repair
// pass, which closes unbalanced braces.
var objectPattern = regexp.MustCompile(`\{[\s\S]*?\}`)

// ExtractObject returns the first brace-delimited group in s, or the empty
// string when none exists. The result is a candidate, not guaranteed valid
// JSON.
func ExtractObject(s string) string {
	return objectPattern.FindString(s)
}

// ParseObject locates the first JSON object in s and parses it, running a
// repair pass (unquoted keys, trailing commas, unbalanced braces, single
// quotes) when the strict parse fails. All required keys must be present in
// the result.
func ParseObject(s string, required ...string) (gjson.Result, error) {
	raw := ExtractObject(s)
	if raw == "" {
		return gjson.Result{}, ErrNoObject
	}
	if !gjson.Valid(raw) {
		repaired, err := jsonrepair.JSONRepair(raw)
		if err != nil || !gjson.Valid(repaired) {
			return gjson.Result{}, ErrBadObject
		}
		raw = repaired
	}
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return gjson.Result{}, ErrBadObject
	}
	for _, key := range required {
		if !obj.Get(key).Exists() {
			return gjson.Result{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
		}
	}
	return obj, nil
}
