package retriever

import (
	"math"
	"strconv"
	"strings"

	"voice-shopping-be/pkg/shopping"
)

var priceNoise = strings.NewReplacer(",", "", "₹", "", "$", "")

// ParsePrice reads catalog prices such as "$1,299.00" or "₹499".
// Anything unreadable is 0.
func ParsePrice(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(priceNoise.Replace(raw)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Matches applies category, price, brand and material filters in that order.
// Text comparisons are case-insensitive substring matches; price bounds are
// inclusive; brands match if any requested brand matches.
func Matches(rec shopping.ProductRecord, f shopping.Filters) bool {
	if f.Category != nil && *f.Category != "" {
		if !strings.Contains(strings.ToLower(rec.Category), strings.ToLower(*f.Category)) {
			return false
		}
	}

	if f.MinPrice != nil && rec.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && rec.Price > *f.MaxPrice {
		return false
	}

	if len(f.Brand) > 0 {
		brand := strings.ToLower(rec.Brand)
		found := false
		for _, want := range f.Brand {
			if strings.Contains(brand, strings.ToLower(want)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Material != nil && *f.Material != "" {
		if !strings.Contains(strings.ToLower(rec.Material), strings.ToLower(*f.Material)) {
			return false
		}
	}

	return true
}
