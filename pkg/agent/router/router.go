// Package router turns a free-text shopping query into a task, a constraint
// set and safety flags with a single LLM call.
package router

import (
	"context"
	"errors"
	"fmt"

	"voice-shopping-be/internal/constant"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/agent/output"
	"voice-shopping-be/pkg/llm"
	"voice-shopping-be/pkg/shopping"
)

const module = "IntentRouter"

// ErrNoJSON means the completion held nothing the output parser could decode
var ErrNoJSON = errors.New("no JSON object found in router output")

// Result is the outcome of one extraction. When Err is set the other fields
// hold the fallback values.
type Result struct {
	Task        shopping.Task
	Constraints shopping.Constraints
	SafetyFlags []shopping.SafetyFlag
	Err         error
}

// OK reports whether extraction succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Fallback is returned whenever extraction fails
func Fallback(err error) Result {
	return Result{
		Task:        shopping.TaskProductSearch,
		Constraints: shopping.EmptyConstraints(),
		SafetyFlags: []shopping.SafetyFlag{},
		Err:         err,
	}
}

type Extractor struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewExtractor(provider llm.LLMProvider, log logger.ILogger) *Extractor {
	return &Extractor{llm: provider, logger: log}
}

// Extract never returns an error; failures come back as Fallback results
func (e *Extractor) Extract(ctx context.Context, query string) Result {
	prompt := fmt.Sprintf(constant.IntentExtractionPrompt, query)

	completion, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.1), llm.WithMaxTokens(300), llm.WithJSONMode())
	if err != nil {
		e.logger.Warn(module, "LLM call failed, using fallback intent", map[string]interface{}{"error": err.Error()})
		return Fallback(fmt.Errorf("llm generation failed: %w", err))
	}

	obj := output.Parse(completion)
	if obj == nil {
		e.logger.Warn(module, "Unparseable router output, using fallback intent", map[string]interface{}{
			"raw": truncate(completion, 200),
		})
		return Fallback(ErrNoJSON)
	}

	res := Decode(obj)
	e.logger.Debug(module, "Intent extracted", map[string]interface{}{
		"task":         res.Task,
		"safety_flags": res.SafetyFlags,
	})
	return res
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
