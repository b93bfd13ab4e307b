package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voice-shopping-be/internal/constant"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/agent/output"
	"voice-shopping-be/pkg/llm"
)

// Input limits applied before prompting
const (
	maxNameChars = 200
	maxTextChars = 300
)

var ErrNoMetadata = errors.New("no JSON object found in metadata output")

// Metadata is what the LLM extracts from a listing. Empty means not found.
type Metadata struct {
	Category string
	Brand    string
	Material string
}

// Enricher fills missing category, brand and material using the LLM
type Enricher struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewEnricher(provider llm.LLMProvider, log logger.ILogger) *Enricher {
	return &Enricher{llm: provider, logger: log}
}

func (e *Enricher) Extract(ctx context.Context, r Row) (Metadata, error) {
	prompt := fmt.Sprintf(constant.MetadataExtractionPrompt,
		truncate(r.Name, maxNameChars),
		truncate(r.About, maxTextChars),
		truncate(r.Specification, maxTextChars),
	)

	completion, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0), llm.WithMaxTokens(120), llm.WithJSONMode())
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata completion: %w", err)
	}

	obj := output.Parse(completion)
	if obj == nil {
		return Metadata{}, ErrNoMetadata
	}
	return Metadata{
		Category: strings.ToLower(stringField(obj["category"])),
		Brand:    stringField(obj["brand"]),
		Material: stringField(obj["material"]),
	}, nil
}

// Enrich keeps values already present on the row and only fills blanks.
// Extraction failures are logged and leave the row unchanged.
func (e *Enricher) Enrich(ctx context.Context, r Row) Row {
	if !r.NeedsEnrichment() {
		return r
	}

	meta, err := e.Extract(ctx, r)
	if err != nil {
		e.logger.Warn("CatalogEnricher", "Metadata extraction failed", map[string]interface{}{
			"uniq_id": r.UniqID,
			"error":   err.Error(),
		})
		return r
	}

	if r.Category == "" {
		r.Category = meta.Category
	}
	if r.Brand == "" {
		r.Brand = meta.Brand
	}
	if r.Material == "" {
		r.Material = meta.Material
	}
	return r
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func stringField(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}
