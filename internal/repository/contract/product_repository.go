package contract

import (
	"context"

	"voice-shopping-be/internal/entity"
	"voice-shopping-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredProduct wraps Product with its cosine distance to the query (0 = identical)
type ScoredProduct struct {
	Product  *entity.Product
	Distance float64
}

type ProductRepository interface {
	Upsert(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the limit closest products, nearest first
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredProduct, error)
}
