// Package llmtest provides a scripted LLMProvider for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"voice-shopping-be/pkg/llm"
)

// ErrNoRule is returned when no rule matches and no default is set
var ErrNoRule = errors.New("llmtest: no scripted reply for prompt")

type rule struct {
	match func(prompt string) bool
	text  string
	err   error
}

// Fake answers prompts from a list of rules. The first matching rule wins.
type Fake struct {
	mu      sync.Mutex
	rules   []rule
	prompts []string
}

var _ llm.LLMProvider = &Fake{}

func New() *Fake {
	return &Fake{}
}

// When replies with text for every prompt containing all fragments
func (f *Fake) When(text string, fragments ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: containsAll(fragments), text: text})
	return f
}

// FailWhen returns err for every prompt containing all fragments
func (f *Fake) FailWhen(err error, fragments ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: containsAll(fragments), err: err})
	return f
}

// Prompts returns every prompt seen so far
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Calls counts prompts containing fragment
func (f *Fake) Calls(fragment string) int {
	n := 0
	for _, p := range f.Prompts() {
		if strings.Contains(p, fragment) {
			n++
		}
	}
	return n
}

func (f *Fake) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	for _, r := range f.rules {
		if r.match(prompt) {
			return r.text, r.err
		}
	}
	return "", ErrNoRule
}

func (f *Fake) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return f.Generate(ctx, "", opts...)
	}
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func containsAll(fragments []string) func(string) bool {
	return func(prompt string) bool {
		for _, frag := range fragments {
			if !strings.Contains(prompt, frag) {
				return false
			}
		}
		return true
	}
}
