package retriever

import (
	"context"
	"fmt"

	"voice-shopping-be/pkg/shopping"
)

// StubWebRetriever stands in for a live search integration. It returns one
// synthetic record shaped from the query and filters.
type StubWebRetriever struct{}

var _ Retriever = StubWebRetriever{}

func (StubWebRetriever) Retrieve(_ context.Context, query string, filters shopping.Filters, k int) ([]shopping.ProductRecord, error) {
	if k <= 0 {
		return []shopping.ProductRecord{}, nil
	}

	rec := shopping.ProductRecord{
		DocID:    "web_001",
		Title:    fmt.Sprintf("[WEB MOCK] Product matching '%s'", query),
		Price:    15.99,
		Category: "unknown",
		Brand:    "Unknown",
		Material: "unknown",
		Content:  fmt.Sprintf("Placeholder web result for '%s'. Configure WEB_SEARCH_URL for live results.", query),
		Score:    0.95,
		Source:   shopping.OriginWeb,
		URL:      "https://example.com/product",
	}
	if filters.Category != nil {
		rec.Category = *filters.Category
	}
	if len(filters.Brand) > 0 {
		rec.Brand = filters.Brand[0]
	}
	if filters.Material != nil {
		rec.Material = *filters.Material
	}
	return []shopping.ProductRecord{rec}, nil
}
