package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"voice-shopping-be/internal/entity"
	"voice-shopping-be/internal/repository/contract"
	"voice-shopping-be/internal/repository/specification"
	"voice-shopping-be/internal/repository/unitofwork"
	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/embedding"
	"voice-shopping-be/pkg/events"
	"voice-shopping-be/pkg/speech"

	"github.com/google/uuid"
)

type fakePipeline struct {
	calls int
	state *graph.State
}

func (f *fakePipeline) Invoke(_ context.Context, query string) *graph.State {
	f.calls++
	s := *f.state
	s.Query = query
	return &s
}

type fakeAnswerStore struct {
	entries map[string]*graph.State
	getErr  error
	sets    int
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{entries: map[string]*graph.State{}}
}

func (f *fakeAnswerStore) Get(_ context.Context, query string) (*graph.State, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	s, ok := f.entries[query]
	return s, ok, nil
}

func (f *fakeAnswerStore) Set(_ context.Context, query string, state *graph.State) error {
	f.sets++
	f.entries[query] = state
	return nil
}

func (f *fakeAnswerStore) Flush(_ context.Context) (int, error) {
	n := len(f.entries)
	f.entries = map[string]*graph.State{}
	return n, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

type fakeObserver struct {
	queries  []string
	hits     int
	misses   int
	deleted  int
	indexed  int
	failures int
	tasks    []string
}

func (f *fakeObserver) ObserveQuery(channel string, _ time.Duration) { f.queries = append(f.queries, channel) }
func (f *fakeObserver) ObserveAudioDeleted(n int)                    { f.deleted += n }
func (f *fakeObserver) ObserveTask(task, strategy string)            { f.tasks = append(f.tasks, task+"/"+strategy) }

func (f *fakeObserver) ObserveCache(hit bool) {
	if hit {
		f.hits++
		return
	}
	f.misses++
}

func (f *fakeObserver) ObserveIndexed(success bool) {
	if success {
		f.indexed++
		return
	}
	f.failures++
}

type fakeSynthesizer struct {
	chunks []string
	err    error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.chunks = append(f.chunks, text)
	return []byte("ID3" + text), nil
}

type fakeTranscriber struct {
	language string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader, _ string, language string) (*speech.Transcript, error) {
	f.language = language
	raw, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}
	return &speech.Transcript{Text: string(raw), Language: language}, nil
}

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, text)
	res := &embedding.EmbeddingResponse{}
	res.Embedding.Values = []float32{1, 0, 0}
	return res, nil
}

// fakeProductRepo keeps products keyed by external id
type fakeProductRepo struct {
	products  map[string]*entity.Product
	upsertErr error
	hits      []*contract.ScoredProduct
	lastSpecs []specification.Specification
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Upsert(_ context.Context, p *entity.Product) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	r.products[p.ExternalId] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	for k, p := range r.products {
		if p.Id == id {
			delete(r.products, k)
		}
	}
	return nil
}

func (r *fakeProductRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Product, error) {
	for _, s := range specs {
		if byID, ok := s.(specification.ByExternalID); ok {
			return r.products[byID.ExternalID], nil
		}
	}
	return nil, errors.New("unsupported specification")
}

func (r *fakeProductRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	r.lastSpecs = specs
	out := []*entity.Product{}
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int) ([]*contract.ScoredProduct, error) {
	if limit < len(r.hits) {
		return r.hits[:limit], nil
	}
	return r.hits, nil
}

type fakeUnitOfWork struct {
	repo      *fakeProductRepo
	begun     int
	committed int
}

func (u *fakeUnitOfWork) Begin(context.Context) error { u.begun++; return nil }
func (u *fakeUnitOfWork) Commit() error               { u.committed++; return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) ProductRepository() contract.ProductRepository {
	return u.repo
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUnitOfWork{repo: newFakeProductRepo()}}
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakePublisherService struct {
	payloads [][]byte
	err      error
}

func (f *fakePublisherService) Publish(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}
