package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ragchat/internal/bootstrap"
	httptransport "ragchat/internal/transport/http"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	cfg := app.Config
	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httptransport.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.LLM.TimeoutSeconds+30) * time.Second,
	}

	events := "disabled"
	if app.Events != nil {
		events = cfg.RabbitMQ.EventQueue
	}
	log.Printf("%s (%s) listening on %s: llm=%s/%s index=%s@%s events=%s",
		cfg.App.Name, cfg.App.Env, server.Addr,
		cfg.LLM.Provider, cfg.LLM.Model, app.Index.Name(), cfg.VectorAddr(), events)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		log.Printf("server failed: %v", err)
		return
	case sig := <-quit:
		log.Printf("received %s, draining chats for up to %s", sig, cfg.ShutdownTimeout())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
}
