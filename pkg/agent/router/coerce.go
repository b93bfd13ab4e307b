package router

import (
	"math"
	"strconv"
	"strings"

	"voice-shopping-be/pkg/shopping"
)

// Decode coerces a parsed router object into typed values. Anything that
// does not fit is dropped rather than rejected.
func Decode(obj map[string]any) Result {
	res := Result{
		Task:        shopping.ParseTask(obj["task"]),
		Constraints: shopping.EmptyConstraints(),
		SafetyFlags: safetyFlags(obj["safety_flags"]),
	}

	raw, ok := obj["constraints"].(map[string]any)
	if !ok {
		return res
	}

	res.Constraints = shopping.Constraints{
		Product:  text(raw["product"]),
		MinPrice: price(raw["min_price"]),
		MaxPrice: price(raw["max_price"]),
		Material: text(raw["material"]),
		Brand:    brands(raw["brand"]),
	}
	return res
}

func text(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	return &s
}

// price accepts numbers and numeric strings. "null", "" and garbage are absent.
func price(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "null" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func brands(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case string:
		if b := strings.TrimSpace(x); b != "" {
			out = append(out, b)
		}
	case []any:
		for _, item := range x {
			if b, ok := item.(string); ok && strings.TrimSpace(b) != "" {
				out = append(out, strings.TrimSpace(b))
			}
		}
	}
	return out
}

func safetyFlags(v any) []shopping.SafetyFlag {
	out := []shopping.SafetyFlag{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		flag, ok := item.(string)
		if !ok || seen[flag] || !shopping.IsKnownSafetyFlag(flag) {
			continue
		}
		seen[flag] = true
		out = append(out, shopping.SafetyFlag(flag))
	}
	return out
}
