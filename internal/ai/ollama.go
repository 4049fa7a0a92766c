package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

type OllamaConfig struct {
	Host           string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

// OllamaClient serves embeddings and chat from a local Ollama server.
type OllamaClient struct {
	client         *api.Client
	model          string
	embeddingModel string
}

func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "http://localhost:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host failed: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &OllamaClient{
		client:         api.NewClient(base, &http.Client{Timeout: timeout}),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  c.embeddingModel,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// EmbedBatch embeds texts one at a time; the embeddings endpoint takes a single prompt.
func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (c *OllamaClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: make([]api.Message, 0, len(messages)),
		Stream:   &stream,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, api.Message{Role: m.Role, Content: m.Content})
	}

	var out strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	return out.String(), nil
}
