// Package answer turns retrieved products into a short spoken answer with
// [DOC n] citations.
package answer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"voice-shopping-be/internal/constant"
	"voice-shopping-be/pkg/llm"
	"voice-shopping-be/pkg/shopping"
)

const (
	// NoResults is spoken when retrieval found nothing
	NoResults = "I couldn't find any products matching your criteria. Try adjusting your search."
	// NoProducts is the degraded answer when even the fallback has nothing to cite
	NoProducts = "No products found."
)

var (
	ErrEmptyAnswer = errors.New("answer model returned empty text")

	citationTag = regexp.MustCompile(`\[DOC\s*(\d+)\]`)
)

var safetyNotes = map[shopping.SafetyFlag]string{
	shopping.FlagMedicalAdvice:        "The shopper may be asking for medical advice. Do not diagnose or promise a cure; suggest talking to a doctor or pharmacist.",
	shopping.FlagDangerousProduct:     "The request touches on dangerous or restricted items. Do not help obtain them.",
	shopping.FlagInappropriateContent: "The request may be inappropriate. Stay polite and keep to appropriate products.",
}

// Request bundles what the synthesizer needs
type Request struct {
	Query       string
	Task        shopping.Task
	SafetyFlags []shopping.SafetyFlag
	Products    []shopping.ProductRecord
}

type Synthesizer struct {
	llm llm.LLMProvider
}

func NewSynthesizer(provider llm.LLMProvider) *Synthesizer {
	return &Synthesizer{llm: provider}
}

// Synthesize calls the model once. Callers handle the zero-product case
// and errors with NoResults and Fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (string, []string, error) {
	prompt := fmt.Sprintf(constant.AnswerPrompt, req.Query, req.Task, RenderProducts(req.Products), renderNotes(req.SafetyFlags))

	completion, err := s.llm.Generate(ctx, prompt, llm.WithTemperature(0.3), llm.WithMaxTokens(250))
	if err != nil {
		return "", nil, fmt.Errorf("llm generation failed: %w", err)
	}

	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(completion), "Answer:"))
	if text == "" {
		return "", nil, ErrEmptyAnswer
	}
	return text, Citations(text, len(req.Products)), nil
}

// RenderProducts numbers products as [DOC 1], [DOC 2], ...
func RenderProducts(products []shopping.ProductRecord) string {
	var b strings.Builder
	for i, p := range products {
		fmt.Fprintf(&b, "[DOC %d] %s | brand: %s | price: $%.2f | category: %s | material: %s | source: %s\n",
			i+1, p.Title, orDash(p.Brand), p.Price, orDash(p.Category), orDash(p.Material), p.Source)
		if content := strings.TrimSpace(p.Content); content != "" {
			b.WriteString("    ")
			b.WriteString(truncate(strings.Join(strings.Fields(content), " "), 240))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Citations lists the distinct DOC labels in order of first mention,
// skipping numbers that point past the product list.
func Citations(text string, n int) []string {
	out := []string{}
	seen := map[int]bool{}
	for _, m := range citationTag.FindAllStringSubmatch(text, -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > n || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, fmt.Sprintf("DOC %d", idx))
	}
	return out
}

// Fallback summarizes without the model
func Fallback(products []shopping.ProductRecord) (string, []string) {
	if len(products) == 0 {
		return NoProducts, []string{}
	}
	top := products[0]
	return fmt.Sprintf("Found %d products. Top result: %s at $%.2f", len(products), top.Title, top.Price), []string{"DOC 1"}
}

func renderNotes(flags []shopping.SafetyFlag) string {
	if len(flags) == 0 {
		return "none"
	}
	notes := make([]string, 0, len(flags))
	for _, f := range flags {
		if n, ok := safetyNotes[f]; ok {
			notes = append(notes, "- "+n)
		}
	}
	return strings.Join(notes, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
