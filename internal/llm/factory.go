package llm

import (
	"fmt"
	"os"
)

// NewProvider creates a new LLM provider based on the given provider type and
// model. Supported provider types: "openai", "anthropic", "ollama".
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// NewGuardedProvider builds a provider for the given type and model and wraps
// it with a circuit breaker and a rate limiter. This is the stack every
// production caller should use; bare providers are for tests.
func NewGuardedProvider(providerType, model string, rpm int) (Provider, error) {
	p, err := NewProvider(providerType, model)
	if err != nil {
		return nil, err
	}
	p = NewBreakerProvider(p)
	if rpm > 0 {
		p = NewRateLimitedProvider(p, rpm)
	}
	return p, nil
}
