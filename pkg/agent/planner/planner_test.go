package planner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/llm/llmtest"
	"voice-shopping-be/pkg/shopping"
)

func newPlanner(fake *llmtest.Fake) *Planner {
	return NewPlanner(fake, logger.NewNopLogger())
}

func filtersJSON(t *testing.T, f shopping.Filters) map[string]any {
	t.Helper()
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestPlan_ProductSearch(t *testing.T) {
	fake := llmtest.New().When(`{"sources": ["private_rag"], "retrieval_fields": ["title", "brand", "price", "rating", "material"], "comparison_criteria": ["price", "rating"], "filters": {"category": "shampoo", "max_price": 20, "material": "organic"}}`)
	constraints := shopping.Constraints{
		Product:  shopping.StringPtr("shampoo"),
		MaxPrice: shopping.FloatPtr(20),
		Material: shopping.StringPtr("organic"),
		Brand:    []string{},
	}

	res := newPlanner(fake).Plan(context.Background(), "organic shampoo under $20", shopping.TaskProductSearch, constraints)

	require.True(t, res.OK())
	assert.Equal(t, []shopping.Source{shopping.SourcePrivateRAG}, res.Plan.Sources)
	assert.Equal(t, map[string]any{"category": "shampoo", "max_price": float64(20), "material": "organic"}, filtersJSON(t, res.Plan.Filters))

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `"brand":[]`)
	assert.Contains(t, prompts[0], "Task: product_search")
}

func TestPlan_ComparisonFields(t *testing.T) {
	fake := llmtest.New().When(`Plan: {"sources": ["private_rag"], "retrieval_fields": ["title", "brand", "price", "rating", "features", "ingredients", "review_count"], "comparison_criteria": ["price", "rating", "features"], "filters": {"category": "conditioner", "brand": ["Dove", "Pantene"]}}`)
	constraints := shopping.Constraints{Product: shopping.StringPtr("conditioner"), Brand: []string{"Dove", "Pantene"}}

	res := newPlanner(fake).Plan(context.Background(), "compare Dove vs Pantene conditioner", shopping.TaskComparison, constraints)

	require.True(t, res.OK())
	assert.Contains(t, res.Plan.RetrievalFields, "features")
	assert.Contains(t, res.Plan.RetrievalFields, "ingredients")
	assert.Equal(t, []string{"Dove", "Pantene"}, res.Plan.Filters.Brand)
}

func TestPlan_AvailabilityCheckAddsWeb(t *testing.T) {
	fake := llmtest.New().When(`{"sources": ["private_rag", "web_search"], "retrieval_fields": ["title", "brand", "price", "in_stock"], "comparison_criteria": [], "filters": {"category": "shampoo", "material": "organic"}}`)
	constraints := shopping.Constraints{Product: shopping.StringPtr("shampoo"), Material: shopping.StringPtr("organic"), Brand: []string{}}

	res := newPlanner(fake).Plan(context.Background(), "is organic shampoo available now?", shopping.TaskAvailabilityCheck, constraints)

	require.True(t, res.OK())
	assert.Equal(t, []shopping.Source{shopping.SourcePrivateRAG, shopping.SourceWebSearch}, res.Plan.Sources)
	assert.NotNil(t, res.Plan.ComparisonCriteria)
	assert.Empty(t, res.Plan.ComparisonCriteria)
}

func TestPlan_FailuresUseFallbackPlan(t *testing.T) {
	cases := map[string]*llmtest.Fake{
		"unparseable": llmtest.New().When("I think you should check the catalog."),
		"llm error":   llmtest.New().FailWhen(errors.New("timeout")),
	}

	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			res := newPlanner(fake).Plan(context.Background(), "shampoo", shopping.TaskProductSearch, shopping.Constraints{
				Product: shopping.StringPtr("shampoo"),
				Brand:   []string{},
			})

			assert.False(t, res.OK())
			assert.Equal(t, shopping.FallbackPlan(), res.Plan)
			assert.True(t, res.Plan.Filters.IsEmpty())
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("invalid sources default to private_rag", func(t *testing.T) {
		plan := Normalize(map[string]any{"sources": []any{"google", "amazon"}}, shopping.EmptyConstraints())
		assert.Equal(t, []shopping.Source{shopping.SourcePrivateRAG}, plan.Sources)
	})

	t.Run("missing sources default to private_rag", func(t *testing.T) {
		plan := Normalize(map[string]any{}, shopping.EmptyConstraints())
		assert.Equal(t, []shopping.Source{shopping.SourcePrivateRAG}, plan.Sources)
	})

	t.Run("unknown sources are dropped and duplicates collapsed", func(t *testing.T) {
		plan := Normalize(map[string]any{"sources": []any{"web_search", "bing", "web_search"}}, shopping.EmptyConstraints())
		assert.Equal(t, []shopping.Source{shopping.SourceWebSearch}, plan.Sources)
	})

	t.Run("empty retrieval fields get defaults", func(t *testing.T) {
		plan := Normalize(map[string]any{"retrieval_fields": []any{}}, shopping.EmptyConstraints())
		assert.Equal(t, []string{"title", "price", "rating"}, plan.RetrievalFields)
	})

	t.Run("model filters are ignored", func(t *testing.T) {
		plan := Normalize(map[string]any{"filters": map[string]any{"category": "tv", "max_price": nil}}, shopping.EmptyConstraints())
		assert.True(t, plan.Filters.IsEmpty())
	})
}

func TestTranslateFilters(t *testing.T) {
	tests := []struct {
		name        string
		constraints shopping.Constraints
		expected    map[string]any
	}{
		{
			name:        "nothing set",
			constraints: shopping.EmptyConstraints(),
			expected:    map[string]any{},
		},
		{
			name: "product maps to category",
			constraints: shopping.Constraints{
				Product: shopping.StringPtr("kettle"),
				Brand:   []string{},
			},
			expected: map[string]any{"category": "kettle"},
		},
		{
			name: "both price bounds",
			constraints: shopping.Constraints{
				MinPrice: shopping.FloatPtr(20),
				MaxPrice: shopping.FloatPtr(40),
				Material: shopping.StringPtr("stainless steel"),
			},
			expected: map[string]any{"min_price": float64(20), "max_price": float64(40), "material": "stainless steel"},
		},
		{
			name: "zero min price is kept",
			constraints: shopping.Constraints{
				MinPrice: shopping.FloatPtr(0),
			},
			expected: map[string]any{"min_price": float64(0)},
		},
		{
			name: "brand list copied verbatim",
			constraints: shopping.Constraints{
				Brand: []string{"Nike", "Adidas"},
			},
			expected: map[string]any{"brand": []any{"Nike", "Adidas"}},
		},
		{
			name: "blank strings produce no key",
			constraints: shopping.Constraints{
				Product:  new(string),
				Material: new(string),
				Brand:    []string{},
			},
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filtersJSON(t, TranslateFilters(tt.constraints)))
		})
	}
}
