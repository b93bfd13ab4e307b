// Package planner converts an extracted intent into a retrieval plan.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"voice-shopping-be/internal/constant"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/agent/output"
	"voice-shopping-be/pkg/llm"
	"voice-shopping-be/pkg/shopping"
)

const module = "RetrievalPlanner"

var ErrNoJSON = errors.New("no JSON object found in planner output")

// Result carries the plan; on failure Plan is shopping.FallbackPlan()
type Result struct {
	Plan shopping.Plan
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Planner struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewPlanner(provider llm.LLMProvider, log logger.ILogger) *Planner {
	return &Planner{llm: provider, logger: log}
}

// Plan never returns an error; failures come back with the fallback plan
func (p *Planner) Plan(ctx context.Context, query string, task shopping.Task, constraints shopping.Constraints) Result {
	encoded, err := json.Marshal(constraints)
	if err != nil {
		return fallback(fmt.Errorf("encode constraints: %w", err))
	}

	prompt := fmt.Sprintf(constant.RetrievalPlanPrompt, query, task, string(encoded))
	completion, err := p.llm.Generate(ctx, prompt, llm.WithTemperature(0.1), llm.WithMaxTokens(400), llm.WithJSONMode())
	if err != nil {
		p.logger.Warn(module, "LLM call failed, using fallback plan", map[string]interface{}{"error": err.Error()})
		return fallback(fmt.Errorf("llm generation failed: %w", err))
	}

	obj := output.Parse(completion)
	if obj == nil {
		p.logger.Warn(module, "Unparseable planner output, using fallback plan", nil)
		return fallback(ErrNoJSON)
	}

	plan := Normalize(obj, constraints)
	p.logger.Debug(module, "Plan created", map[string]interface{}{
		"sources": plan.Sources,
		"filters": plan.Filters,
	})
	return Result{Plan: plan}
}

func fallback(err error) Result {
	return Result{Plan: shopping.FallbackPlan(), Err: err}
}

// Normalize validates the model's plan. Filters are always rebuilt from
// constraints; whatever the model put under "filters" is ignored.
func Normalize(obj map[string]any, constraints shopping.Constraints) shopping.Plan {
	plan := shopping.Plan{
		Sources:            sources(obj["sources"]),
		RetrievalFields:    stringList(obj["retrieval_fields"]),
		ComparisonCriteria: stringList(obj["comparison_criteria"]),
		Filters:            TranslateFilters(constraints),
	}
	if len(plan.RetrievalFields) == 0 {
		plan.RetrievalFields = append([]string(nil), shopping.DefaultRetrievalFields...)
	}
	return plan
}

// TranslateFilters maps constraint fields onto filter keys.
// product becomes category; nil or empty values produce no key.
func TranslateFilters(c shopping.Constraints) shopping.Filters {
	f := shopping.Filters{
		Category: c.Product,
		MinPrice: c.MinPrice,
		MaxPrice: c.MaxPrice,
		Material: c.Material,
	}
	if f.Category != nil && *f.Category == "" {
		f.Category = nil
	}
	if f.Material != nil && *f.Material == "" {
		f.Material = nil
	}
	if len(c.Brand) > 0 {
		f.Brand = append([]string(nil), c.Brand...)
	}
	return f
}

func sources(v any) []shopping.Source {
	out := []shopping.Source{}
	seen := map[shopping.Source]bool{}
	for _, s := range stringList(v) {
		src := shopping.Source(s)
		if (src == shopping.SourcePrivateRAG || src == shopping.SourceWebSearch) && !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	if len(out) == 0 {
		return append(out, shopping.DefaultSources...)
	}
	return out
}

func stringList(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case string:
		if x != "" {
			out = append(out, x)
		}
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
