package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/REPPL/Persona-sub003/internal/config"
)

// Provider names recognized in backend identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// ParseBackend splits a backend identifier of the form "provider:model".
// Identifiers without a recognized provider prefix are treated as opaque
// model names served by the local Ollama endpoint; this also keeps Ollama's
// own colon-bearing names ("llama3:8b") intact.
func ParseBackend(id string) (provider, model string) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) == 2 {
		switch strings.ToLower(parts[0]) {
		case ProviderOpenAI:
			return ProviderOpenAI, parts[1]
		case ProviderClaude, "anthropic":
			return ProviderClaude, parts[1]
		case ProviderGemini:
			return ProviderGemini, parts[1]
		case ProviderOllama:
			return ProviderOllama, parts[1]
		}
	}
	return ProviderOllama, id
}

// NewBackendClient resolves a backend identifier to a generation client
// using the configured credentials.
func NewBackendClient(ctx context.Context, backend string, cfg config.LLMConfig) (LLMClient, error) {
	provider, model := ParseBackend(backend)

	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("backend %q requires an OpenAI API key", backend)
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, model, "", cfg.OpenAIBaseURL), nil

	case ProviderClaude:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("backend %q requires an Anthropic API key", backend)
		}
		return NewClaudeClient(cfg.AnthropicAPIKey, model, ""), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("backend %q requires a Gemini API key", backend)
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, model, "")

	default:
		// Ollama ignores the API key but the client config requires one.
		return NewOpenAIClient("ollama", model, "", ollamaBaseURL(cfg.OllamaBaseURL)), nil
	}
}

// NewEmbedder resolves an embedding backend identifier. An empty identifier
// yields a nil embedder, which selects the lexical fallback downstream.
func NewEmbedder(ctx context.Context, backend string, cfg config.LLMConfig) (EmbedderClient, error) {
	if backend == "" {
		return nil, nil
	}
	provider, model := ParseBackend(backend)

	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("embedding backend %q requires an OpenAI API key", backend)
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, "", model, cfg.OpenAIBaseURL), nil

	case ProviderClaude:
		return nil, fmt.Errorf("embedding backend %q: Claude has no embedding API", backend)

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("embedding backend %q requires a Gemini API key", backend)
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, "", model)

	default:
		return NewOpenAIClient("ollama", "", model, ollamaBaseURL(cfg.OllamaBaseURL)), nil
	}
}

// ollamaBaseURL normalizes the Ollama endpoint to its OpenAI-compatible
// /v1 prefix, which enables usage tracking.
func ollamaBaseURL(base string) string {
	if base == "" {
		base = "http://localhost:11434"
	}
	if !strings.HasSuffix(base, "/v1") {
		base = fmt.Sprintf("%s/v1", strings.TrimRight(base, "/"))
	}
	return base
}
