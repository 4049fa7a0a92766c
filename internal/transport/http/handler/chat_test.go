package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/model"
	"ragchat/internal/transport/http/response"
)

type fakeAnswerer struct {
	calls  int
	answer string
	err    error
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string) (*model.ChatAnswer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.ChatAnswer{Text: f.answer}, nil
}

type recordingPublisher struct {
	events []model.ChatEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event model.ChatEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newChatRouter(answerer ChatAnswerer, publisher EventPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/chat", NewChatHandler(answerer, publisher).Chat)
	return r
}

func postChat(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestChat_Success(t *testing.T) {
	answerer := &fakeAnswerer{answer: "Run `ritual init`."}
	r := newChatRouter(answerer, nil)

	w := postChat(t, r, `{"query":"How do I start?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["answer"] != "Run `ritual init`." {
		t.Errorf("unexpected answer: %q", body["answer"])
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestChat_RejectsInvalidBodies(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"empty", `{"query":""}`, "query must not be empty"},
		{"blank", `{"query":"   \n\t"}`, "query must not be empty"},
		{"missing", `{}`, "query must not be empty"},
		{"too long", fmt.Sprintf(`{"query":"%s"}`, strings.Repeat("a", 2001)), "query must be at most 2000 characters"},
		{"malformed", `{"query":`, `request body must be a JSON object with a string "query" field`},
		{"wrong type", `{"query":42}`, `request body must be a JSON object with a string "query" field`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answerer := &fakeAnswerer{answer: "unused"}
			w := postChat(t, newChatRouter(answerer, nil), tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			body := decodeError(t, w)
			if body.Error != "Invalid chat request" || body.Code != response.CodeValidationFailed {
				t.Errorf("unexpected error body: %+v", body)
			}
			if body.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, body.Message)
			}
			if answerer.calls != 0 {
				t.Error("pipeline must not run for invalid input")
			}
		})
	}
}

func TestChat_AcceptsExactlyMaxRunes(t *testing.T) {
	answerer := &fakeAnswerer{answer: "ok"}
	w := postChat(t, newChatRouter(answerer, nil), fmt.Sprintf(`{"query":"%s"}`, strings.Repeat("é", 2000)))
	if w.Code != http.StatusOK {
		t.Fatalf("2000 characters should be accepted, got %d: %s", w.Code, w.Body.String())
	}
	if answerer.calls != 1 {
		t.Errorf("expected one pipeline call, got %d", answerer.calls)
	}
}

func TestChat_MapsPipelineErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"retrieval", fmt.Errorf("%w: %w", app.ErrRetrieval, errors.New("index unreachable")), http.StatusInternalServerError, response.CodeRetrievalFailed},
		{"generation", fmt.Errorf("%w: %w", app.ErrGeneration, errors.New("model overloaded")), http.StatusInternalServerError, response.CodeGenerationFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, response.CodeInternalError},
		{"validation", fmt.Errorf("%w: query is empty", app.ErrValidation), http.StatusBadRequest, response.CodeValidationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postChat(t, newChatRouter(&fakeAnswerer{err: tc.err}, nil), `{"query":"hello"}`)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			body := decodeError(t, w)
			if body.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, body.Code)
			}
			if body.Message != tc.err.Error() {
				t.Errorf("expected message %q, got %q", tc.err.Error(), body.Message)
			}
			if tc.status == http.StatusInternalServerError && body.Error != "Failed to process chat request" {
				t.Errorf("unexpected summary: %s", body.Error)
			}
		})
	}
}

func TestChat_PublishesOutcome(t *testing.T) {
	publisher := &recordingPublisher{}
	r := newChatRouter(&fakeAnswerer{answer: "fine"}, publisher)

	w := postChat(t, r, `{"query":"héllo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	e := publisher.events[0]
	if e.Status != model.ChatStatusOK || e.QueryChars != 5 || e.ErrorCode != "" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.RequestID != w.Header().Get(RequestIDHeader) {
		t.Errorf("event request id %s does not match header", e.RequestID)
	}
}

func TestChat_PublishFailureDoesNotAffectResponse(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	failing := &fakeAnswerer{err: fmt.Errorf("%w: timeout", app.ErrGeneration)}

	w := postChat(t, newChatRouter(failing, publisher), `{"query":"hi"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if len(publisher.events) != 1 || publisher.events[0].ErrorCode != response.CodeGenerationFailed {
		t.Errorf("unexpected events: %+v", publisher.events)
	}
}
