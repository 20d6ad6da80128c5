package llm

import (
	"context"
	"fmt"
	"os"
)

// LLMProvider is the vendor-neutral generation surface. The process runs a
// single provider; per-widget tuning arrives through Options.
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string, opts Options) (string, error)
	GetProviderName() string
}

// Options override the provider defaults for one generation. Zero values
// mean "keep the provider default", so a widget only overrides what its
// config actually sets.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

func (o Options) model(fallback string) string {
	if o.Model != "" {
		return o.Model
	}
	return fallback
}

func (o Options) temperature(fallback float32) float32 {
	if o.Temperature > 0 {
		return o.Temperature
	}
	return fallback
}

func (o Options) maxTokens(fallback int) int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return fallback
}

// ProviderType for factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig to create a provider
type ProviderConfig struct {
	Type ProviderType

	// API Keys
	OpenAIKey   string
	GroqKey     string
	DeepSeekKey string

	// Model configs
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider factory to create an LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		return NewGroqProvider(cfg.GroqKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		return NewDeepSeekProvider(cfg.DeepSeekKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv loads config from environment variables
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("LLM_PROVIDER")
	if providerType == "" {
		providerType = "openai" // default
	}

	cfg := &ProviderConfig{
		Type:        ProviderType(providerType),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GroqKey:     os.Getenv("GROQ_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.Model = model
	} else {
		// Provider-specific defaults
		switch cfg.Type {
		case ProviderOpenAI:
			cfg.Model = "gpt-4o-mini"
		case ProviderGroq:
			cfg.Model = "llama-3.1-70b-versatile"
		case ProviderDeepSeek:
			cfg.Model = "deepseek-chat"
		}
	}

	cfg.Temperature = 0.7
	cfg.MaxTokens = 1024

	return cfg, nil
}
