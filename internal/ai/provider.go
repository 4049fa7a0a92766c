package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider is what the rest of the service needs from a model host.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type ProviderConfig struct {
	Provider       string
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	OllamaHost     string
	Timeout        time.Duration
}

// NewProvider builds the configured provider once; the result is shared by all requests.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return NewOpenAIClient(OpenAIConfig{
			BaseURL:        cfg.BaseURL,
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			EmbeddingModel: cfg.EmbeddingModel,
			Timeout:        cfg.Timeout,
		}), nil
	case "ollama":
		return NewOllamaClient(OllamaConfig{
			Host:           cfg.OllamaHost,
			Model:          cfg.Model,
			EmbeddingModel: cfg.EmbeddingModel,
			Timeout:        cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
