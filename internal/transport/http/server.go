package http

import (
	"github.com/gin-gonic/gin"

	appsvc "ragchat/internal/app"
	"ragchat/internal/bootstrap"
	"ragchat/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	var broker handler.BrokerStatus
	if app.MQConn != nil {
		broker = app.MQConn
	}
	healthHandler := handler.NewHealthHandler(handler.AppInfo{
		Name:      app.Config.App.Name,
		Env:       app.Config.App.Env,
		StartedAt: app.StartedAt,
	}, app.Index, broker)
	router.GET("/healthz", healthHandler.Check)

	chatService := appsvc.NewChatService(app.Provider, app.Index, app.Provider)
	var publisher handler.EventPublisher
	if app.Events != nil {
		publisher = app.Events
	}
	chatHandler := handler.NewChatHandler(chatService, publisher)

	api := router.Group("/api")
	api.POST("/chat", chatHandler.Chat)

	return router
}
