package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubTransport struct {
	mu      sync.Mutex
	queries []string
	answer  string
	err     error
}

func (s *stubTransport) Ask(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.answer, s.err
}

// blockingTransport holds every call until release is closed.
type blockingTransport struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingTransport) Ask(ctx context.Context, query string) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	<-b.release
	return "done", nil
}

func TestNewSession_StartsWithWelcome(t *testing.T) {
	s := NewSession(&stubTransport{}, nil)
	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].ID != WelcomeMessageID || !msgs[0].IsBot {
		t.Errorf("unexpected welcome message: %+v", msgs[0])
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle, got %s", s.State())
	}
}

func TestSubmit_Success(t *testing.T) {
	transport := &stubTransport{answer: "Use **ritual up**."}
	s := NewSession(transport, nil)

	if err := s.Submit(context.Background(), "  How do I start?  "); err != nil {
		t.Fatalf("submit: %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].IsBot || msgs[1].Text != "How do I start?" {
		t.Errorf("unexpected user message: %+v", msgs[1])
	}
	if !msgs[2].IsBot || msgs[2].Text != "Use **ritual up**." {
		t.Errorf("unexpected bot message: %+v", msgs[2])
	}
	if msgs[1].ID == "" || msgs[1].ID == msgs[2].ID {
		t.Error("messages need distinct ids")
	}
	if transport.queries[0] != "How do I start?" {
		t.Errorf("query should be trimmed, got %q", transport.queries[0])
	}
	if s.State() != StateIdle {
		t.Error("session should be idle after the answer")
	}
}

func TestSubmit_BlankDoesNothing(t *testing.T) {
	transport := &stubTransport{answer: "x"}
	s := NewSession(transport, nil)

	for _, in := range []string{"", "   ", "\n\t"} {
		if err := s.Submit(context.Background(), in); !errors.Is(err, ErrBlankInput) {
			t.Errorf("Submit(%q): expected ErrBlankInput, got %v", in, err)
		}
	}
	if len(transport.queries) != 0 {
		t.Error("blank input must not reach the network")
	}
	if len(s.Messages()) != 1 {
		t.Error("blank input must not change the log")
	}
}

func TestSubmit_FailureKeepsUserMessageAndNotifies(t *testing.T) {
	notifier := NewNotifier(time.Minute)
	defer notifier.Close()
	s := NewSession(&stubTransport{err: errors.New("503")}, notifier)

	err := s.Submit(context.Background(), "hello")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[1].Text != "hello" || msgs[1].IsBot {
		t.Errorf("user message should stay in the log: %+v", msgs)
	}
	active := notifier.Active()
	if len(active) != 1 || active[0].Description != FailureMessage || !active[0].Destructive {
		t.Errorf("unexpected notifications: %+v", active)
	}
	if s.State() != StateIdle {
		t.Error("session should return to idle after a failure")
	}
}

func TestSubmit_RejectsWhileAwaiting(t *testing.T) {
	transport := &blockingTransport{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := NewSession(transport, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Submit(context.Background(), "first") }()
	<-transport.started

	if !s.Busy() {
		t.Error("session should be busy while waiting")
	}
	if err := s.Submit(context.Background(), "second"); !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("expected ErrRequestInFlight, got %v", err)
	}

	close(transport.release)
	if err := <-errCh; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if transport.calls != 1 {
		t.Errorf("expected exactly one request, got %d", transport.calls)
	}
	msgs := s.Messages()
	var texts []string
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	if len(msgs) != 3 || strings.Contains(strings.Join(texts, "|"), "second") {
		t.Errorf("second message must not be recorded: %v", texts)
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	s := NewSession(&stubTransport{}, nil)
	msgs := s.Messages()
	msgs[0].Text = "changed"
	if s.Messages()[0].Text != WelcomeText {
		t.Error("callers must not be able to mutate the log")
	}
}
