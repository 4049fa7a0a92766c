// Package client holds the state of an interactive chat session against /api/chat.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	WelcomeMessageID = "welcome"
	WelcomeText      = "Welcome to Ritual AI! I'm here to help you with step-by-step guidance and technical assistance.\n\n" +
		"**What I can help with:**\n" +
		"• Technical problem-solving\n" +
		"• Step-by-step tutorials\n" +
		"• Code examples and explanations\n" +
		"• Best practices and recommendations"

	FailureTitle   = "Error"
	FailureMessage = "Failed to get response. Please try again."
)

var (
	ErrBlankInput      = errors.New("message is blank")
	ErrRequestInFlight = errors.New("a request is already in flight")
	ErrRequestFailed   = errors.New("chat request failed")
)

type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	if s == StateAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsBot     bool      `json:"is_bot"`
	Timestamp time.Time `json:"timestamp"`
}

// Transport sends one question and returns the answer text.
type Transport interface {
	Ask(ctx context.Context, query string) (string, error)
}

// Session is an append-only message log plus the one-request-at-a-time rule.
type Session struct {
	transport Transport
	notifier  *Notifier

	mu       sync.Mutex
	messages []Message
	state    State
}

// NewSession seeds the log with the welcome message. notifier may be nil.
func NewSession(transport Transport, notifier *Notifier) *Session {
	return &Session{
		transport: transport,
		notifier:  notifier,
		messages: []Message{{
			ID:        WelcomeMessageID,
			Text:      WelcomeText,
			IsBot:     true,
			Timestamp: time.Now(),
		}},
		state: StateIdle,
	}
}

// Submit sends text and blocks until the answer arrives. The user message is
// appended before the request goes out and is kept even when it fails.
func (s *Session) Submit(ctx context.Context, text string) error {
	query := strings.TrimSpace(text)
	if query == "" {
		return ErrBlankInput
	}

	s.mu.Lock()
	if s.state == StateAwaitingResponse {
		s.mu.Unlock()
		return ErrRequestInFlight
	}
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Text:      query,
		Timestamp: time.Now(),
	})
	s.state = StateAwaitingResponse
	s.mu.Unlock()

	answer, err := s.transport.Ask(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle

	if err != nil {
		if s.notifier != nil {
			s.notifier.Notify(FailureTitle, FailureMessage, true)
		}
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Text:      answer,
		IsBot:     true,
		Timestamp: time.Now(),
	})
	return nil
}

// Messages returns a copy of the log in insertion order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy mirrors the typing indicator.
func (s *Session) Busy() bool {
	return s.State() == StateAwaitingResponse
}
