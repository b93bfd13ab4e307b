package service

import (
	"context"
	"fmt"

	"voice-shopping-be/internal/entity"
	"voice-shopping-be/internal/repository/unitofwork"
	"voice-shopping-be/pkg/agent/retriever"
	"voice-shopping-be/pkg/embedding"
)

// catalogSearcher serves the local retriever from the pgvector product table
type catalogSearcher struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

var _ retriever.VectorSearcher = &catalogSearcher{}

func NewCatalogSearcher(uowFactory unitofwork.RepositoryFactory, embeddingProvider embedding.EmbeddingProvider) retriever.VectorSearcher {
	return &catalogSearcher{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *catalogSearcher) SimilaritySearch(ctx context.Context, query string, k int) ([]retriever.ScoredDocument, error) {
	res, err := s.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	hits, err := uow.ProductRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, k)
	if err != nil {
		return nil, err
	}

	docs := make([]retriever.ScoredDocument, 0, len(hits))
	for _, hit := range hits {
		docs = append(docs, retriever.ScoredDocument{
			Content:  hit.Product.Document,
			Metadata: productMetadata(hit.Product),
			Score:    hit.Distance,
		})
	}
	return docs, nil
}

// productMetadata flattens a product into the keys the local retriever reads.
// Fixed keys win over free-form attributes with the same name.
func productMetadata(p *entity.Product) map[string]string {
	meta := make(map[string]string, len(p.Attributes)+6)
	for k, v := range p.Attributes {
		meta[k] = v
	}
	meta[retriever.MetaID] = p.ExternalId
	meta[retriever.MetaName] = p.Name
	meta[retriever.MetaPrice] = p.SellingPrice
	meta[retriever.MetaCategory] = p.Category
	meta[retriever.MetaBrand] = p.Brand
	meta[retriever.MetaMaterial] = p.Material
	return meta
}
