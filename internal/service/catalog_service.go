package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/entity"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/repository/specification"
	"voice-shopping-be/internal/repository/unitofwork"
	"voice-shopping-be/pkg/catalog"
	"voice-shopping-be/pkg/embedding"
)

// defaultListLimit caps an unpaginated admin listing
const defaultListLimit = 20

var ErrProductNotFound = errors.New("product not found")

type ICatalogService interface {
	Enqueue(ctx context.Context, req *dto.IndexProductsRequest) (*dto.IndexProductsResponse, error)
	IndexProducts(ctx context.Context, rows []catalog.Row) (int, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, query dto.ProductListQuery) (*dto.ProductListResponse, error)
	Get(ctx context.Context, uniqID string) (*dto.ProductResponse, error)
}

// RowEnricher fills missing structured fields before indexing
type RowEnricher interface {
	Enrich(ctx context.Context, r catalog.Row) catalog.Row
}

// CacheFlusher drops answers computed against the old catalog
type CacheFlusher interface {
	Flush(ctx context.Context) (int, error)
}

type IndexObserver interface {
	ObserveIndexed(success bool)
}

// CatalogNotifier tells connected voice clients the catalog changed
type CatalogNotifier interface {
	Broadcast(message string)
}

type catalogService struct {
	publisherService  IPublisherService
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	enricher          RowEnricher     // optional
	cache             CacheFlusher    // optional
	observer          IndexObserver   // optional
	notifier          CatalogNotifier // optional
	logger            logger.ILogger
}

func NewCatalogService(
	publisherService IPublisherService,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	enricher RowEnricher,
	cache CacheFlusher,
	observer IndexObserver,
	notifier CatalogNotifier,
	log logger.ILogger,
) ICatalogService {
	return &catalogService{
		publisherService:  publisherService,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		enricher:          enricher,
		cache:             cache,
		observer:          observer,
		notifier:          notifier,
		logger:            log,
	}
}

// Enqueue publishes one indexing message per product
func (c *catalogService) Enqueue(ctx context.Context, req *dto.IndexProductsRequest) (*dto.IndexProductsResponse, error) {
	queued := 0
	for _, p := range req.Products {
		payload, err := json.Marshal(dto.PublishIndexProductMessage{Product: p})
		if err != nil {
			return nil, err
		}
		if err := c.publisherService.Publish(ctx, payload); err != nil {
			return nil, fmt.Errorf("queue product %s: %w", p.UniqID, err)
		}
		queued++
	}

	c.logger.Info("CATALOG", "Products queued for indexing", map[string]interface{}{"count": queued})
	return &dto.IndexProductsResponse{Queued: queued}, nil
}

// IndexProducts enriches and embeds every valid row, then upserts them in one
// transaction. Invalid rows are skipped. The answer cache is flushed afterwards.
func (c *catalogService) IndexProducts(ctx context.Context, rows []catalog.Row) (int, error) {
	products := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			c.logger.Warn("CATALOG", "Skipping invalid product", map[string]interface{}{"error": err.Error()})
			c.observe(false)
			continue
		}
		if c.enricher != nil {
			row = c.enricher.Enrich(ctx, row)
		}

		document := catalog.EmbedText(row)
		res, err := c.embeddingProvider.Generate(ctx, document, embedding.TaskRetrievalDocument)
		if err != nil {
			c.observe(false)
			return 0, fmt.Errorf("embed product %s: %w", row.UniqID, err)
		}
		products = append(products, productFromRow(row, document, res.Embedding.Values))
	}

	if len(products) == 0 {
		return 0, nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	for _, p := range products {
		if err := uow.ProductRepository().Upsert(ctx, p); err != nil {
			c.observe(false)
			return 0, fmt.Errorf("upsert product %s: %w", p.ExternalId, err)
		}
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	for range products {
		c.observe(true)
	}
	c.flushAnswers(ctx)
	if c.notifier != nil {
		c.notifier.Broadcast(fmt.Sprintf("Catalog updated: %d products indexed", len(products)))
	}

	c.logger.Info("CATALOG", "Products indexed", map[string]interface{}{
		"indexed": len(products),
		"skipped": len(rows) - len(products),
	})
	return len(products), nil
}

func (c *catalogService) Count(ctx context.Context) (int64, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.ProductRepository().Count(ctx)
}

// List pages through indexed products, newest first
func (c *catalogService) List(ctx context.Context, query dto.ProductListQuery) (*dto.ProductListResponse, error) {
	var filters []specification.Specification
	if category := strings.TrimSpace(query.Category); category != "" {
		filters = append(filters, specification.ByCategory{Category: category})
	}
	if brands := splitList(query.Brand); len(brands) > 0 {
		filters = append(filters, specification.ByBrands{Brands: brands})
	}
	if q := strings.TrimSpace(query.Q); q != "" {
		filters = append(filters, specification.ProductSearchQuery{Query: q})
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.ProductRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: query.Offset},
	)
	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.ProductListResponse{Products: make([]dto.ProductResponse, 0, len(products)), Total: total}
	for _, p := range products {
		res.Products = append(res.Products, productResponse(p))
	}
	return res, nil
}

func (c *catalogService) Get(ctx context.Context, uniqID string) (*dto.ProductResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	p, err := uow.ProductRepository().FindOne(ctx, specification.ByExternalID{ExternalID: uniqID})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	res := productResponse(p)
	return &res, nil
}

func (c *catalogService) flushAnswers(ctx context.Context) {
	if c.cache == nil {
		return
	}
	n, err := c.cache.Flush(ctx)
	if err != nil {
		c.logger.Warn("CATALOG", "Failed to flush answer cache", map[string]interface{}{"error": err.Error()})
		return
	}
	if n > 0 {
		c.logger.Info("CATALOG", "Answer cache flushed", map[string]interface{}{"deleted": n})
	}
}

func (c *catalogService) observe(success bool) {
	if c.observer != nil {
		c.observer.ObserveIndexed(success)
	}
}

func productFromRow(row catalog.Row, document string, vector []float32) *entity.Product {
	return &entity.Product{
		ExternalId:     row.UniqID,
		Name:           row.Name,
		Category:       row.Category,
		Brand:          row.Brand,
		Material:       row.Material,
		SellingPrice:   row.SellingPrice,
		Document:       document,
		EmbeddingValue: vector,
		Attributes:     row.Extra,
		CreatedAt:      time.Now(),
	}
}

func productResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		UniqID:       p.ExternalId,
		ProductName:  p.Name,
		Category:     p.Category,
		Brand:        p.Brand,
		Material:     p.Material,
		SellingPrice: p.SellingPrice,
		Attributes:   p.Attributes,
		IndexedAt:    p.CreatedAt,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RowFromInput converts the HTTP and queue payload into a catalog row
func RowFromInput(p dto.ProductInput) catalog.Row {
	return catalog.Row{
		UniqID:        p.UniqID,
		Name:          p.ProductName,
		About:         p.AboutProduct,
		Specification: p.ProductSpecification,
		SellingPrice:  p.SellingPrice,
		Category:      p.Category,
		Brand:         p.Brand,
		Material:      p.Material,
		Extra:         p.Attributes,
	}
}
