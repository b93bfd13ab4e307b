package llm

import (
	"context"
)

// Chat roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string
	Content string
}

type Option func(*Options)

// Options are per-call generation settings layered over provider defaults
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	JSONMode    bool   // ask the backend to emit a single JSON object
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithJSONMode constrains the completion to JSON where the backend supports it.
// Callers still parse defensively; not every model honours it.
func WithJSONMode() Option {
	return func(o *Options) {
		o.JSONMode = true
	}
}

// Resolve applies opts over defaults
func Resolve(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider is the completion backend used by the query pipeline and the catalog enricher
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate is Chat with a single user message
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
