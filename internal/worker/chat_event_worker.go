package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"ragchat/internal/model"
)

// ChatStats is a running tally of chat outcomes seen by the worker.
type ChatStats struct {
	Total          int64            `json:"total"`
	Failed         int64            `json:"failed"`
	ByErrorCode    map[string]int64 `json:"by_error_code"`
	TotalLatencyMS int64            `json:"total_latency_ms"`
}

func (s ChatStats) AvgLatencyMS() int64 {
	if s.Total == 0 {
		return 0
	}
	return s.TotalLatencyMS / s.Total
}

// ChatEventWorker consumes chat outcome events and logs them with running totals.
type ChatEventWorker struct {
	conn      *amqp.Connection
	queueName string

	mu    sync.Mutex
	stats ChatStats

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChatEventWorker(conn *amqp.Connection, queueName string) *ChatEventWorker {
	return &ChatEventWorker{
		conn:      conn,
		queueName: queueName,
		stats:     ChatStats{ByErrorCode: map[string]int64{}},
	}
}

func (w *ChatEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(d.Body); err != nil {
					log.Printf("worker decode chat event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ChatEventWorker) handle(body []byte) error {
	var event model.ChatEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return err
	}

	w.mu.Lock()
	w.stats.Total++
	w.stats.TotalLatencyMS += event.LatencyMS
	if event.Status != model.ChatStatusOK {
		w.stats.Failed++
		w.stats.ByErrorCode[event.ErrorCode]++
	}
	snapshot := w.stats
	w.mu.Unlock()

	log.Printf("chat event request=%s status=%s code=%s latency=%dms (total=%d failed=%d avg=%dms)",
		event.RequestID, event.Status, event.ErrorCode, event.LatencyMS,
		snapshot.Total, snapshot.Failed, snapshot.AvgLatencyMS())
	return nil
}

// Stats returns a copy of the running totals.
func (w *ChatEventWorker) Stats() ChatStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.stats
	out.ByErrorCode = make(map[string]int64, len(w.stats.ByErrorCode))
	for k, v := range w.stats.ByErrorCode {
		out.ByErrorCode[k] = v
	}
	return out
}

func (w *ChatEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
