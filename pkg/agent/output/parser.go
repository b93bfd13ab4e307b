// Package output extracts JSON objects from noisy LLM completions.
package output

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	leadingLabel  = regexp.MustCompile(`(?i)^(output:|json:|plan:|assistant:)\s*`)
	openingFence  = regexp.MustCompile("```json\\s*")
	anyFence      = regexp.MustCompile("```\\s*")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)

	// Matches an object with at most one level of nested braces.
	// Deeper nesting is not supported.
	flatObject = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// Parse returns the first JSON object found in raw, or nil when
// nothing decodable could be recovered.
func Parse(raw string) map[string]any {
	text := clean(raw)

	if candidate := flatObject.FindString(text); candidate != "" {
		if obj, ok := decode(candidate); ok {
			return obj
		}
		if obj, ok := decode(repair(candidate)); ok {
			return obj
		}
	}

	if obj, ok := decode(text); ok {
		return obj
	}
	return nil
}

func clean(raw string) string {
	text := strings.TrimSpace(raw)
	text = leadingLabel.ReplaceAllString(text, "")
	text = openingFence.ReplaceAllString(text, "")
	text = anyFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// repair fixes single-quoted keys and trailing commas
func repair(candidate string) string {
	fixed := strings.ReplaceAll(candidate, "'", `"`)
	return trailingComma.ReplaceAllString(fixed, "$1")
}

func decode(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
