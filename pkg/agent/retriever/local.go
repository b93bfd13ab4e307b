package retriever

import (
	"context"
	"fmt"

	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/shopping"
	"voice-shopping-be/pkg/syncx"
)

// Catalog metadata keys written by the indexer
const (
	MetaID       = "Uniq Id"
	MetaName     = "Product Name"
	MetaPrice    = "Selling Price"
	MetaCategory = "category"
	MetaBrand    = "brand"
	MetaMaterial = "material"
)

// overFetch is how many candidates are requested per wanted result
const overFetch = 3

// ScoredDocument is one similarity hit. Lower Score means closer.
type ScoredDocument struct {
	Content  string
	Metadata map[string]string
	Score    float64
}

// VectorSearcher is the similarity search collaborator
type VectorSearcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]ScoredDocument, error)
}

// LocalRetriever serves the private catalog
type LocalRetriever struct {
	searcher VectorSearcher
	logger   logger.ILogger
}

var _ Retriever = &LocalRetriever{}

func NewLocalRetriever(searcher VectorSearcher, log logger.ILogger) *LocalRetriever {
	return &LocalRetriever{searcher: searcher, logger: log}
}

// Retrieve over-fetches 3k candidates and keeps the first k that pass the filters
func (r *LocalRetriever) Retrieve(ctx context.Context, query string, filters shopping.Filters, k int) ([]shopping.ProductRecord, error) {
	if k <= 0 {
		return []shopping.ProductRecord{}, nil
	}

	hits, err := r.searcher.SimilaritySearch(ctx, query, k*overFetch)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	out := make([]shopping.ProductRecord, 0, k)
	for _, hit := range hits {
		rec := recordFromHit(hit)
		if !Matches(rec, filters) {
			continue
		}
		out = append(out, rec)
		if len(out) >= k {
			break
		}
	}

	r.logger.Info("LocalRetriever", "Catalog search done", map[string]interface{}{
		"candidates": len(hits),
		"returned":   len(out),
	})
	return out, nil
}

func recordFromHit(hit ScoredDocument) shopping.ProductRecord {
	meta := hit.Metadata
	return shopping.ProductRecord{
		DocID:    meta[MetaID],
		Title:    meta[MetaName],
		Price:    ParsePrice(meta[MetaPrice]),
		Category: meta[MetaCategory],
		Brand:    meta[MetaBrand],
		Material: meta[MetaMaterial],
		Content:  hit.Content,
		Score:    hit.Score,
		Source:   shopping.OriginRAG,
	}
}

// LazySearcher opens the real searcher on first use and shares it afterwards
type LazySearcher struct {
	inner *syncx.Lazy[VectorSearcher]
}

func NewLazySearcher(open func() (VectorSearcher, error)) *LazySearcher {
	return &LazySearcher{inner: syncx.NewLazy(open)}
}

func (l *LazySearcher) SimilaritySearch(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	s, err := l.inner.Get()
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	return s.SimilaritySearch(ctx, query, k)
}
