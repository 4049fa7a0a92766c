package worker

import (
	"encoding/json"
	"testing"

	"ragchat/internal/model"
)

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestChatEventWorker_HandleTalliesOutcomes(t *testing.T) {
	w := NewChatEventWorker(nil, "chat.events")

	events := []model.ChatEvent{
		{RequestID: "1", Status: model.ChatStatusOK, LatencyMS: 100},
		{RequestID: "2", Status: model.ChatStatusFailed, ErrorCode: "retrieval_failed", LatencyMS: 300},
	}
	for _, e := range events {
		if err := w.handle(mustJSON(t, e)); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	stats := w.Stats()
	if stats.Total != 2 || stats.Failed != 1 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if stats.ByErrorCode["retrieval_failed"] != 1 {
		t.Errorf("error code not tallied: %+v", stats.ByErrorCode)
	}
	if stats.AvgLatencyMS() != 200 {
		t.Errorf("expected avg 200ms, got %d", stats.AvgLatencyMS())
	}
}

func TestChatEventWorker_HandleRejectsGarbage(t *testing.T) {
	w := NewChatEventWorker(nil, "chat.events")
	if err := w.handle([]byte("not json")); err == nil {
		t.Error("should reject undecodable payload")
	}
	if w.Stats().Total != 0 {
		t.Error("garbage must not be counted")
	}
}
