package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/entity"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/repository/contract"
	"voice-shopping-be/internal/repository/specification"
	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/agent/retriever"
	"voice-shopping-be/pkg/catalog"
	"voice-shopping-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Broadcast(message string) {
	r.messages = append(r.messages, message)
}

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, r catalog.Row) catalog.Row {
	if r.Category == "" {
		r.Category = "shampoo"
	}
	return r
}

func TestCatalog_IndexProducts(t *testing.T) {
	factory := newFakeFactory()
	embedder := &fakeEmbedder{}
	cache := newFakeAnswerStore()
	cache.entries["stale"] = &graph.State{}
	obs := &fakeObserver{}
	notifier := &recordingNotifier{}
	svc := NewCatalogService(&fakePublisherService{}, factory, embedder, stubEnricher{}, cache, obs, notifier, logger.NewNopLogger())

	rows := []catalog.Row{
		{UniqID: "p1", Name: "Dove Shampoo", About: "Gentle", SellingPrice: "$12.99", Extra: map[string]string{"rating": "4.5"}},
		{UniqID: "", Name: "No id"},
		{UniqID: "p2", Name: "Steel Kettle", Category: "kettle"},
	}

	n, err := svc.IndexProducts(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, factory.uow.committed)
	assert.Equal(t, 2, obs.indexed)
	assert.Equal(t, 1, obs.failures)
	assert.Empty(t, cache.entries)
	assert.Equal(t, []string{"Catalog updated: 2 products indexed"}, notifier.messages)

	p1 := factory.uow.repo.products["p1"]
	require.NotNil(t, p1)
	assert.Equal(t, "shampoo", p1.Category)
	assert.Equal(t, "Product Name: Dove Shampoo. About Product: Gentle. Product Specification: ", p1.Document)
	assert.Equal(t, []float32{1, 0, 0}, p1.EmbeddingValue)
	assert.Equal(t, "4.5", p1.Attributes["rating"])
	assert.Equal(t, "kettle", factory.uow.repo.products["p2"].Category)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestCatalog_IndexProductsEmbeddingFailure(t *testing.T) {
	factory := newFakeFactory()
	svc := NewCatalogService(&fakePublisherService{}, factory, &fakeEmbedder{err: errors.New("ollama down")}, nil, nil, nil, nil, logger.NewNopLogger())

	_, err := svc.IndexProducts(context.Background(), []catalog.Row{{UniqID: "p1", Name: "x"}})

	assert.ErrorContains(t, err, "ollama down")
	assert.Zero(t, factory.uow.begun)
}

func TestCatalog_IndexProductsNothingValid(t *testing.T) {
	factory := newFakeFactory()
	svc := NewCatalogService(&fakePublisherService{}, factory, &fakeEmbedder{}, nil, nil, nil, nil, logger.NewNopLogger())

	n, err := svc.IndexProducts(context.Background(), []catalog.Row{{Name: "no id"}})

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, factory.uow.begun)
}

func TestCatalog_Enqueue(t *testing.T) {
	pub := &fakePublisherService{}
	svc := NewCatalogService(pub, newFakeFactory(), &fakeEmbedder{}, nil, nil, nil, nil, logger.NewNopLogger())

	res, err := svc.Enqueue(context.Background(), &dto.IndexProductsRequest{Products: []dto.ProductInput{
		{UniqID: "p1", ProductName: "Shampoo"},
		{UniqID: "p2", ProductName: "Kettle"},
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Queued)
	require.Len(t, pub.payloads, 2)
	var msg dto.PublishIndexProductMessage
	require.NoError(t, json.Unmarshal(pub.payloads[1], &msg))
	assert.Equal(t, "p2", msg.Product.UniqID)
}

func TestCatalog_EnqueuePublishFailure(t *testing.T) {
	svc := NewCatalogService(&fakePublisherService{err: errors.New("closed")}, newFakeFactory(), &fakeEmbedder{}, nil, nil, nil, nil, logger.NewNopLogger())

	_, err := svc.Enqueue(context.Background(), &dto.IndexProductsRequest{Products: []dto.ProductInput{{UniqID: "p1", ProductName: "x"}}})

	assert.ErrorContains(t, err, "p1")
}

func TestCatalog_ListBuildsSpecifications(t *testing.T) {
	factory := newFakeFactory()
	factory.uow.repo.products["p1"] = &entity.Product{ExternalId: "p1", Name: "Dove Shampoo", Brand: "Dove"}
	svc := NewCatalogService(&fakePublisherService{}, factory, &fakeEmbedder{}, nil, nil, nil, nil, logger.NewNopLogger())

	res, err := svc.List(context.Background(), dto.ProductListQuery{Category: " shampoo ", Brand: "Dove, ,Pantene", Q: "organic", Offset: 20})
	require.NoError(t, err)

	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Dove Shampoo", res.Products[0].ProductName)
	assert.Equal(t, []specification.Specification{
		specification.ByCategory{Category: "shampoo"},
		specification.ByBrands{Brands: []string{"Dove", "Pantene"}},
		specification.ProductSearchQuery{Query: "organic"},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 20, Offset: 20},
	}, factory.uow.repo.lastSpecs)
}

func TestCatalog_Get(t *testing.T) {
	factory := newFakeFactory()
	factory.uow.repo.products["p1"] = &entity.Product{ExternalId: "p1", Name: "Dove Shampoo", SellingPrice: "$12.99"}
	svc := NewCatalogService(&fakePublisherService{}, factory, &fakeEmbedder{}, nil, nil, nil, nil, logger.NewNopLogger())

	res, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "$12.99", res.SellingPrice)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

type scriptedCatalog struct {
	ICatalogService
	errs  []error
	calls int
}

func (s *scriptedCatalog) IndexProducts(_ context.Context, rows []catalog.Row) (int, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func indexMessage(t *testing.T, id string) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishIndexProductMessage{Product: dto.ProductInput{UniqID: id, ProductName: "Shampoo"}})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func acked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func nacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func TestConsumer_AcksIndexedProduct(t *testing.T) {
	cat := &scriptedCatalog{}
	cs := NewConsumerService(nil, "topic", cat, logger.NewNopLogger()).(*consumerService)

	msg := indexMessage(t, "p1")
	cs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	assert.Equal(t, 1, cat.calls)
}

func TestConsumer_AcksMalformedPayload(t *testing.T) {
	cat := &scriptedCatalog{}
	cs := NewConsumerService(nil, "topic", cat, logger.NewNopLogger()).(*consumerService)

	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	cs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	assert.Zero(t, cat.calls)
}

func TestConsumer_GivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("db down")
	cat := &scriptedCatalog{errs: []error{boom, boom, boom}}
	cs := NewConsumerService(nil, "topic", cat, logger.NewNopLogger()).(*consumerService)

	uuid := watermill.NewUUID()
	payload := indexMessage(t, "p1").Payload

	for attempt := 1; attempt <= MaxIndexAttempts; attempt++ {
		msg := message.NewMessage(uuid, payload)
		cs.processMessage(context.Background(), msg)

		if attempt < MaxIndexAttempts {
			assert.True(t, nacked(msg), "attempt %d should be retried", attempt)
		} else {
			assert.True(t, acked(msg), "last attempt should be dropped")
		}
	}
	assert.Empty(t, cs.attempts)
}

func TestAnalytics_Handle(t *testing.T) {
	obs := &fakeObserver{}
	svc := NewAnalyticsService(obs, logger.NewNopLogger())

	err := svc.Handle(context.Background(), events.BaseEvent{
		Type: events.TypeQueryAnswered,
		Data: map[string]interface{}{"task": "comparison", "strategy": "combined"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(), events.BaseEvent{Type: events.TypeAudioCleaned}))
	require.NoError(t, svc.Handle(context.Background(), events.BaseEvent{Type: events.TypeQueryAnswered, Data: map[string]interface{}{}}))

	assert.Equal(t, []string{"comparison/combined", "unknown/unknown"}, obs.tasks)
}

func TestCatalogSearcher(t *testing.T) {
	factory := newFakeFactory()
	factory.uow.repo.hits = []*contract.ScoredProduct{
		{
			Product: &entity.Product{
				ExternalId:   "p1",
				Name:         "Dove Shampoo",
				SellingPrice: "$12.99",
				Category:     "shampoo",
				Brand:        "Dove",
				Document:     "Product Name: Dove Shampoo.",
				Attributes:   map[string]string{"rating": "4.5", "brand": "ignored"},
			},
			Distance: 0.12,
		},
	}
	embedder := &fakeEmbedder{}
	searcher := NewCatalogSearcher(factory, embedder)

	docs, err := searcher.SimilaritySearch(context.Background(), "shampoo", 15)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, []string{"shampoo"}, embedder.texts)
	assert.Equal(t, 0.12, docs[0].Score)
	assert.Equal(t, "Product Name: Dove Shampoo.", docs[0].Content)
	assert.Equal(t, "p1", docs[0].Metadata[retriever.MetaID])
	assert.Equal(t, "Dove", docs[0].Metadata[retriever.MetaBrand])
	assert.Equal(t, "4.5", docs[0].Metadata["rating"])
}
