package llm

import (
	"context"
	"fmt"

	"voice-shopping-be/pkg/syncx"
)

// LazyProvider defers building the real provider until the first call.
// Every request shares the one instance once it exists.
type LazyProvider struct {
	inner *syncx.Lazy[LLMProvider]
}

var _ LLMProvider = &LazyProvider{}

func NewLazyProvider(build func() (LLMProvider, error)) *LazyProvider {
	return &LazyProvider{inner: syncx.NewLazy(build)}
}

func (l *LazyProvider) get() (LLMProvider, error) {
	p, err := l.inner.Get()
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	return p, nil
}

func (l *LazyProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	p, err := l.get()
	if err != nil {
		return "", err
	}
	return p.Chat(ctx, history, opts...)
}

func (l *LazyProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	p, err := l.get()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, prompt, opts...)
}

// Ready reports whether the underlying provider was initialized
func (l *LazyProvider) Ready() bool {
	return l.inner.Ready()
}
