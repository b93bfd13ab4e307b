// Package retriever executes retrieval plans against the local catalog and
// the live web, then post-filters candidates into ProductRecords.
package retriever

import (
	"context"

	"voice-shopping-be/pkg/shopping"
)

// Retriever is implemented by every source adapter
type Retriever interface {
	Retrieve(ctx context.Context, query string, filters shopping.Filters, k int) ([]shopping.ProductRecord, error)
}

// Strategy names the execution path chosen after planning
type Strategy string

const (
	LocalOnly    Strategy = "local_only"
	ExternalOnly Strategy = "external_only"
	Combined     Strategy = "combined"
)

// SelectStrategy picks the execution path from the plan's sources.
// A plan naming no known source runs locally.
func SelectStrategy(plan shopping.Plan) Strategy {
	local := plan.HasSource(shopping.SourcePrivateRAG)
	web := plan.HasSource(shopping.SourceWebSearch)

	switch {
	case local && web:
		return Combined
	case web:
		return ExternalOnly
	default:
		return LocalOnly
	}
}
