// Package analysis turns raw attempt results into per-model and
// per-prompt-style statistics, cross-model rankings, and bias checks.
//
// The package is deliberately tolerant of garbage: model responses that
// carry no parseable score count as failed grades, never as errors, so
// success rate itself stays a measurable quantity.
package analysis

import "encoding/json"

// AwardedPointsField is the JSON field models must return.
const AwardedPointsField = "awarded_points"

// Score is the tagged outcome of extracting a score from a model response.
// Either Parsed is true and Points holds the value, or Reason says why not.
type Score struct {
	Points float64
	Parsed bool
	Reason string
}

// notParsed builds a failed extraction.
func notParsed(reason string) Score {
	return Score{Reason: reason}
}

// ExtractAwardedPoints pulls a numeric awarded_points value out of a raw
// model response.
//
// The response may wrap the JSON object in prose; extraction takes the
// first balanced {...} substring and decodes that. A nil payload, absent
// object, malformed JSON, or missing/non-numeric field all yield a
// not-parsed Score, never an error.
func ExtractAwardedPoints(raw *string) Score {
	if raw == nil {
		return notParsed("no response payload")
	}

	objText, ok := firstJSONObject(*raw)
	if !ok {
		return notParsed("no JSON object in response")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(objText), &payload); err != nil {
		return notParsed("malformed JSON object")
	}

	value, ok := payload[AwardedPointsField]
	if !ok {
		return notParsed("missing awarded_points field")
	}
	points, ok := value.(float64)
	if !ok {
		return notParsed("awarded_points is not numeric")
	}

	return Score{Points: points, Parsed: true}
}

// firstJSONObject returns the first balanced top-level {...} substring.
//
// Brace counting skips braces inside JSON strings so prose like
// `{"text": "use {x}"}` still balances correctly.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, c := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
