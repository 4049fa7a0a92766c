package model

import "time"

const (
	ChatStatusOK     = "ok"
	ChatStatusFailed = "failed"
)

// ChatEvent describes the outcome of one /api/chat request. It carries no
// query or answer text.
type ChatEvent struct {
	RequestID  string    `json:"request_id"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	QueryChars int       `json:"query_chars"`
	LatencyMS  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
