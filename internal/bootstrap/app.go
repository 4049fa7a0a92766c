package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"
	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"ragchat/internal/ai"
	appsvc "ragchat/internal/app"
	"ragchat/internal/config"
	"ragchat/internal/model"
	mysqlClient "ragchat/internal/platform/mysql"
	qdrantClient "ragchat/internal/platform/qdrant"
	rabbitmqClient "ragchat/internal/platform/rabbitmq"
	sqliteClient "ragchat/internal/platform/sqlite"
	"ragchat/internal/vectorindex"
	"ragchat/internal/worker"
)

// App holds the handles shared by every request. They are built once and
// never mutated afterwards.
type App struct {
	Config   *config.Config
	Provider ai.Provider
	Index    *vectorindex.Index

	// Event plumbing is nil when RABBITMQ_URL is empty.
	MQConn      *amqp.Connection
	Events      *rabbitmqClient.EventPublisher
	EventWorker *worker.ChatEventWorker

	vectorConn *grpc.ClientConn
	StartedAt  time.Time
}

// Indexer holds what cmd/indexer needs: the FAQ source plus the index writer.
type Indexer struct {
	Config   *config.Config
	Provider ai.Provider
	Index    *vectorindex.Index
	Source   *gorm.DB

	vectorConn *grpc.ClientConn
}

func New(ctx context.Context) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	provider, index, conn, err := newCore(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Provider:   provider,
		Index:      index,
		vectorConn: conn,
		StartedAt:  time.Now(),
	}

	if strings.TrimSpace(cfg.RabbitMQ.URL) == "" {
		log.Printf("chat events disabled: RABBITMQ_URL is empty")
		return a, nil
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.App.Name)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.MQConn = mqConn
	a.Events = rabbitmqClient.NewEventPublisher(mqConn, cfg.RabbitMQ.EventQueue)

	eventWorker := worker.NewChatEventWorker(mqConn, cfg.RabbitMQ.EventQueue)
	if err := eventWorker.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start chat event worker failed: %w", err)
	}
	a.EventWorker = eventWorker

	return a, nil
}

func NewIndexer(ctx context.Context) (*Indexer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	provider, index, conn, err := newCore(cfg)
	if err != nil {
		return nil, err
	}
	ix := &Indexer{
		Config:     cfg,
		Provider:   provider,
		Index:      index,
		vectorConn: conn,
	}

	var db *gorm.DB
	switch strings.ToLower(cfg.Source.Driver) {
	case "mysql":
		db, err = mysqlClient.New(ctx, cfg.MySQLDSN())
	case "sqlite", "":
		db, err = sqliteClient.New(ctx, cfg.Source.SQLitePath)
	default:
		err = fmt.Errorf("%w: unknown source driver %q", appsvc.ErrConfiguration, cfg.Source.Driver)
	}
	if err != nil {
		_ = ix.Close()
		return nil, err
	}
	ix.Source = db

	if err := db.AutoMigrate(&model.FAQEntry{}); err != nil {
		_ = ix.Close()
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return ix, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: load config failed: %w", appsvc.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", appsvc.ErrConfiguration, err)
	}
	return cfg, nil
}

func newCore(cfg *config.Config) (ai.Provider, *vectorindex.Index, *grpc.ClientConn, error) {
	provider, err := ai.NewProvider(ai.ProviderConfig{
		Provider:       cfg.LLM.Provider,
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		OllamaHost:     cfg.LLM.OllamaHost,
		Timeout:        time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", appsvc.ErrConfiguration, err)
	}

	conn, err := qdrantClient.New(cfg.VectorAddr(), cfg.Vector.UseTLS)
	if err != nil {
		return nil, nil, nil, err
	}

	index, err := vectorindex.New(
		qdrant.NewPointsClient(conn),
		qdrant.NewCollectionsClient(conn),
		cfg.Vector.IndexName,
		cfg.Vector.APIKey,
	)
	if err != nil {
		_ = conn.Close()
		return nil, nil, nil, fmt.Errorf("%w: %w", appsvc.ErrConfiguration, err)
	}
	return provider, index, conn, nil
}

func (a *App) Close() error {
	var errs []error
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.vectorConn != nil {
		if err := a.vectorConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ix *Indexer) Close() error {
	var errs []error
	if ix.Source != nil {
		if sqlDB, err := ix.Source.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if ix.vectorConn != nil {
		if err := ix.vectorConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
