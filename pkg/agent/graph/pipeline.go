package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/agent/answer"
	"voice-shopping-be/pkg/agent/planner"
	"voice-shopping-be/pkg/agent/retriever"
	"voice-shopping-be/pkg/agent/router"
	"voice-shopping-be/pkg/shopping"
)

const (
	module = "ShoppingPipeline"

	// DefaultK is the number of products retrieved per query
	DefaultK = 5
)

type IntentExtractor interface {
	Extract(ctx context.Context, query string) router.Result
}

type PlanGenerator interface {
	Plan(ctx context.Context, query string, task shopping.Task, constraints shopping.Constraints) planner.Result
}

type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, req answer.Request) (string, []string, error)
}

// Observer receives stage outcomes; internal/metrics implements it
type Observer interface {
	ObserveStage(stage string, success bool, elapsed time.Duration)
	ObserveStrategy(strategy string)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, bool, time.Duration) {}
func (nopObserver) ObserveStrategy(string)                   {}

// Dependencies wires the pipeline. Observer and K are optional.
type Dependencies struct {
	Extractor IntentExtractor
	Planner   PlanGenerator
	Local     retriever.Retriever
	Web       retriever.Retriever
	Answerer  AnswerSynthesizer
	Logger    logger.ILogger
	Observer  Observer
	K         int
}

type Pipeline struct {
	deps   Dependencies
	tracer trace.Tracer
}

func NewPipeline(deps Dependencies) *Pipeline {
	if deps.K <= 0 {
		deps.K = DefaultK
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &Pipeline{
		deps:   deps,
		tracer: otel.Tracer("voice-shopping-be/pkg/agent/graph"),
	}
}

// Invoke runs every stage in order. It always returns a state with a
// non-empty answer; stage failures show up in StepLog only.
func (p *Pipeline) Invoke(ctx context.Context, query string) *State {
	ctx, span := p.tracer.Start(ctx, "pipeline.invoke")
	defer span.End()

	start := time.Now()
	state := newState(query)

	p.runStage(ctx, StageRouter, state, p.extractIntent)
	p.runStage(ctx, StagePlanner, state, p.plan)

	state.Strategy = retriever.SelectStrategy(state.Plan)
	p.deps.Observer.ObserveStrategy(string(state.Strategy))
	switch state.Strategy {
	case retriever.Combined:
		p.runStage(ctx, StageHybridRetriever, state, p.retrieveCombined)
	case retriever.ExternalOnly:
		p.runStage(ctx, StageWebRetriever, state, p.retrieveWeb)
	default:
		p.runStage(ctx, StageRAGRetriever, state, p.retrieveLocal)
	}

	p.runStage(ctx, StageAnswerer, state, p.answer)

	span.SetAttributes(
		attribute.String("shopping.task", string(state.Task)),
		attribute.String("shopping.strategy", string(state.Strategy)),
		attribute.Int("shopping.num_docs", len(state.RetrievedDocs)),
	)
	p.deps.Logger.Info(module, "Pipeline completed", map[string]interface{}{
		"task":        state.Task,
		"strategy":    state.Strategy,
		"num_docs":    len(state.RetrievedDocs),
		"failures":    len(state.Failed()),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return state
}

type stageFunc func(ctx context.Context, state *State) bool

// runStage wraps one stage in a span, recovers panics into a failure entry
// and reports the outcome.
func (p *Pipeline) runStage(ctx context.Context, name string, state *State, fn stageFunc) {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	ok := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				p.deps.Logger.Error(module, "Stage panicked", map[string]interface{}{"stage": name, "panic": fmt.Sprint(r)})
				p.installDefaults(name, state)
				state.fail(name, nil, fmt.Errorf("panic: %v", r))
				ok = false
			}
		}()
		return fn(ctx, state)
	}()

	if !ok {
		span.SetStatus(codes.Error, "stage failed")
	}
	p.deps.Observer.ObserveStage(name, ok, time.Since(start))
}

func (p *Pipeline) installDefaults(name string, state *State) {
	switch name {
	case StageRouter:
		fb := router.Fallback(nil)
		state.Task, state.Constraints, state.SafetyFlags = fb.Task, fb.Constraints, fb.SafetyFlags
	case StagePlanner:
		state.Plan = shopping.FallbackPlan()
	case StageAnswerer:
		state.Answer, state.Citations = answer.Fallback(state.RetrievedDocs)
	default:
		state.RetrievedDocs = []shopping.ProductRecord{}
	}
}

func (p *Pipeline) extractIntent(ctx context.Context, state *State) bool {
	res := p.deps.Extractor.Extract(ctx, state.Query)
	state.Task, state.Constraints, state.SafetyFlags = res.Task, res.Constraints, res.SafetyFlags

	if !res.OK() {
		state.fail(StageRouter, state.Query, res.Err)
		return false
	}
	state.succeed(StageRouter, state.Query, map[string]any{
		"task":         res.Task,
		"constraints":  res.Constraints,
		"safety_flags": res.SafetyFlags,
	})
	return true
}

func (p *Pipeline) plan(ctx context.Context, state *State) bool {
	input := map[string]any{
		"query":       state.Query,
		"task":        state.Task,
		"constraints": state.Constraints,
	}
	res := p.deps.Planner.Plan(ctx, state.Query, state.Task, state.Constraints)
	state.Plan = res.Plan

	if !res.OK() {
		state.fail(StagePlanner, input, res.Err)
		return false
	}
	state.succeed(StagePlanner, input, res.Plan)
	return true
}

func (p *Pipeline) retrievalInput(state *State) map[string]any {
	return map[string]any{"query": state.Query, "filters": state.Plan.Filters}
}

func (p *Pipeline) retrieveLocal(ctx context.Context, state *State) bool {
	return p.retrieveFrom(ctx, state, StageRAGRetriever, p.deps.Local, nil)
}

func (p *Pipeline) retrieveWeb(ctx context.Context, state *State) bool {
	return p.retrieveFrom(ctx, state, StageWebRetriever, p.deps.Web, map[string]any{"source": shopping.OriginWeb})
}

func (p *Pipeline) retrieveFrom(ctx context.Context, state *State, node string, r retriever.Retriever, extra map[string]any) bool {
	docs, err := r.Retrieve(ctx, state.Query, state.Plan.Filters, p.deps.K)
	if err != nil {
		p.deps.Logger.Error(module, "Retrieval failed", map[string]interface{}{"stage": node, "error": err.Error()})
		state.RetrievedDocs = []shopping.ProductRecord{}
		state.fail(node, p.retrievalInput(state), err)
		return false
	}

	state.RetrievedDocs = docs
	out := map[string]any{"num_docs": len(docs), "top_results": topResults(docs, 3, false)}
	for k, v := range extra {
		out[k] = v
	}
	state.succeed(node, p.retrievalInput(state), out)
	return true
}

func (p *Pipeline) retrieveCombined(ctx context.Context, state *State) bool {
	combined := &retriever.CombinedRetriever{Local: p.deps.Local, Web: p.deps.Web}
	res, err := combined.RetrieveSplit(ctx, state.Query, state.Plan.Filters, p.deps.K)
	if err != nil {
		p.deps.Logger.Error(module, "Combined retrieval failed", map[string]interface{}{"error": err.Error()})
		state.RetrievedDocs = []shopping.ProductRecord{}
		state.fail(StageHybridRetriever, p.retrievalInput(state), err)
		return false
	}

	state.RetrievedDocs = res.Records
	state.succeed(StageHybridRetriever, p.retrievalInput(state), map[string]any{
		"num_docs":    len(res.Records),
		"rag_docs":    res.Local,
		"web_docs":    res.Web,
		"top_results": topResults(res.Records, 5, true),
	})
	return true
}

func (p *Pipeline) answer(ctx context.Context, state *State) bool {
	if len(state.RetrievedDocs) == 0 {
		state.Answer, state.Citations = answer.NoResults, []string{}
		state.succeed(StageAnswerer, nil, map[string]any{"answer": state.Answer})
		return true
	}

	text, citations, err := p.deps.Answerer.Synthesize(ctx, answer.Request{
		Query:       state.Query,
		Task:        state.Task,
		SafetyFlags: state.SafetyFlags,
		Products:    state.RetrievedDocs,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = answer.ErrEmptyAnswer
	}
	if err != nil {
		p.deps.Logger.Error(module, "Answer synthesis failed", map[string]interface{}{"error": err.Error()})
		state.Answer, state.Citations = answer.Fallback(state.RetrievedDocs)
		state.fail(StageAnswerer, nil, err)
		return false
	}

	if citations == nil {
		citations = []string{}
	}
	state.Answer, state.Citations = text, citations
	state.succeed(StageAnswerer,
		map[string]any{"query": state.Query, "num_docs": len(state.RetrievedDocs)},
		map[string]any{"answer": preview(text, 100), "citations": citations},
	)
	return true
}

func topResults(docs []shopping.ProductRecord, n int, withSource bool) []map[string]any {
	if len(docs) < n {
		n = len(docs)
	}
	out := make([]map[string]any, 0, n)
	for _, d := range docs[:n] {
		entry := map[string]any{"title": d.Title, "price": d.Price}
		if withSource {
			entry["source"] = d.Source
		}
		out = append(out, entry)
	}
	return out
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
