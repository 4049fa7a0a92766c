package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"

	"ragchat/internal/app"
	"ragchat/internal/model"
	"ragchat/internal/transport/http/response"
)

const (
	RequestIDHeader = "X-Request-ID"

	invalidRequestSummary = "Invalid chat request"
	failedRequestSummary  = "Failed to process chat request"

	eventPublishTimeout = 2 * time.Second
)

type ChatAnswerer interface {
	Answer(ctx context.Context, query string) (*model.ChatAnswer, error)
}

// EventPublisher receives one ChatEvent per finished request.
type EventPublisher interface {
	Publish(ctx context.Context, event model.ChatEvent) error
}

type ChatRequest struct {
	Query string `json:"query" binding:"required,notblank,max=2000"`
}

type ChatHandler struct {
	answerer  ChatAnswerer
	publisher EventPublisher
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by request structs.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			log.Printf("register notblank validator failed: %v", err)
		}
	})
}

// NewChatHandler wires the chat endpoint. publisher may be nil.
func NewChatHandler(answerer ChatAnswerer, publisher EventPublisher) *ChatHandler {
	RegisterValidators()
	return &ChatHandler{
		answerer:  answerer,
		publisher: publisher,
	}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	started := time.Now()
	requestID := uuid.New().String()
	c.Header(RequestIDHeader, requestID)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("chat request %s rejected: %v", requestID, err)
		response.Error(c, http.StatusBadRequest, invalidRequestSummary, response.CodeValidationFailed, describeBindError(err))
		h.publish(requestID, model.ChatStatusFailed, response.CodeValidationFailed, req.Query, started)
		return
	}

	answer, err := h.answerer.Answer(c.Request.Context(), req.Query)
	if err != nil {
		status, code := classify(err)
		log.Printf("chat request %s failed (%s): %v", requestID, code, err)
		if status == http.StatusBadRequest {
			response.Error(c, status, invalidRequestSummary, code, err.Error())
		} else {
			response.Error(c, status, failedRequestSummary, code, err.Error())
		}
		h.publish(requestID, model.ChatStatusFailed, code, req.Query, started)
		return
	}

	response.OK(c, answer)
	h.publish(requestID, model.ChatStatusOK, "", req.Query, started)
}

func (h *ChatHandler) publish(requestID, status, code, query string, started time.Time) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()

	event := model.ChatEvent{
		RequestID:  requestID,
		Status:     status,
		ErrorCode:  code,
		QueryChars: utf8.RuneCountInString(query),
		LatencyMS:  time.Since(started).Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish chat event %s failed: %v", requestID, err)
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest, response.CodeValidationFailed
	case errors.Is(err, app.ErrRetrieval):
		return http.StatusInternalServerError, response.CodeRetrievalFailed
	case errors.Is(err, app.ErrGeneration):
		return http.StatusInternalServerError, response.CodeGenerationFailed
	default:
		return http.StatusInternalServerError, response.CodeInternalError
	}
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return `request body must be a JSON object with a string "query" field`
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, field+" must not be empty")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
