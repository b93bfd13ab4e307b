package factory

import (
	"fmt"

	"voice-shopping-be/pkg/llm"
	"voice-shopping-be/pkg/llm/ollama"
	"voice-shopping-be/pkg/llm/openai"
)

// Settings selects and configures a chat backend
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(s.BaseURL, s.Model), nil
	case "openai":
		if s.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewProvider(s.APIKey, s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}

// NewLazyLLMProvider validates nothing up front; the backend is built on first use
func NewLazyLLMProvider(s Settings) *llm.LazyProvider {
	return llm.NewLazyProvider(func() (llm.LLMProvider, error) {
		return NewLLMProvider(s)
	})
}
