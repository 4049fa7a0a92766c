package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ragchat/internal/ai"
	"ragchat/internal/model"
)

const (
	MaxQueryChars  = 2000
	retrievalTopK  = 5
	fallbackAnswer = "I apologize, but I couldn't generate a response. Please try again."
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	Search(ctx context.Context, vector []float32, topK int) ([]model.RetrievedEntry, error)
}

type Generator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// ChatService answers one question per call: embed, retrieve, assemble, generate.
// It keeps no state between calls.
type ChatService struct {
	embedder  Embedder
	retriever Retriever
	generator Generator
}

func NewChatService(embedder Embedder, retriever Retriever, generator Generator) *ChatService {
	return &ChatService{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
	}
}

// ValidateQuery returns the trimmed query or an ErrValidation.
func ValidateQuery(query string) (string, error) {
	if utf8.RuneCountInString(query) > MaxQueryChars {
		return "", fmt.Errorf("%w: query exceeds %d characters", ErrValidation, MaxQueryChars)
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", fmt.Errorf("%w: query is empty", ErrValidation)
	}
	return trimmed, nil
}

func (s *ChatService) Answer(ctx context.Context, query string) (*model.ChatAnswer, error) {
	question, err := ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	entries, err := s.retriever.Search(ctx, vector, retrievalTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	messages := buildPromptMessages(question, BuildContext(entries))
	text, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if strings.TrimSpace(text) == "" {
		text = fallbackAnswer
	}
	return &model.ChatAnswer{Text: text}, nil
}
