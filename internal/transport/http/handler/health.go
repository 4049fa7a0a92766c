package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerStatus is satisfied by *amqp.Connection.
type BrokerStatus interface {
	IsClosed() bool
}

type AppInfo struct {
	Name      string
	Env       string
	StartedAt time.Time
}

type HealthHandler struct {
	info   AppInfo
	index  Pinger
	broker BrokerStatus
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewHealthHandler reports on the vector index and, when broker is non-nil,
// the event broker connection.
func NewHealthHandler(info AppInfo, index Pinger, broker BrokerStatus) *HealthHandler {
	return &HealthHandler{info: info, index: index, broker: broker}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	allOK := true

	indexStatus := h.checkIndex(ctx)
	deps["vector_index"] = indexStatus
	allOK = allOK && indexStatus.OK

	if h.broker != nil {
		brokerStatus := h.checkBroker()
		deps["rabbitmq"] = brokerStatus
		allOK = allOK && brokerStatus.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.info.Name,
		"env":          h.info.Env,
		"uptime_sec":   int(time.Since(h.info.StartedAt).Seconds()),
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkIndex(ctx context.Context) dependencyStatus {
	if err := h.index.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkBroker() dependencyStatus {
	if h.broker.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
