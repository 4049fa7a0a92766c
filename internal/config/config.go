package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var ErrMissingSetting = errors.New("required setting is missing")

type Config struct {
	App      AppConfig      `toml:"app"`
	LLM      LLMConfig      `toml:"llm"`
	Vector   VectorConfig   `toml:"vector"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Source   SourceConfig   `toml:"source"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`

	// ShutdownTimeoutSeconds bounds how long in-flight chats may finish on SIGTERM.
	ShutdownTimeoutSeconds int `toml:"shutdown_timeout_seconds"`
}

// LLMConfig selects the embedding and generation provider.
// Provider is "openai" (any OpenAI-compatible endpoint) or "ollama".
type LLMConfig struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	OllamaHost     string `toml:"ollama_host"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// VectorConfig points at the Qdrant gRPC endpoint. APIKey and IndexName are required.
type VectorConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	APIKey    string `toml:"api_key"`
	IndexName string `toml:"index_name"`
	UseTLS    bool   `toml:"use_tls"`
}

// RabbitMQConfig enables chat outcome events. An empty URL disables them.
type RabbitMQConfig struct {
	URL        string `toml:"url"`
	EventQueue string `toml:"event_queue"`
}

// SourceConfig is the FAQ database read by the indexer.
type SourceConfig struct {
	Driver     string `toml:"driver"`
	SQLitePath string `toml:"sqlite_path"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	DB         string `toml:"db"`
	Params     string `toml:"params"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	envPath := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load env file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

// Validate reports the settings without which the retriever cannot start.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Vector.APIKey) == "" {
		missing = append(missing, "VECTOR_API_KEY")
	}
	if strings.TrimSpace(c.Vector.IndexName) == "" {
		missing = append(missing, "VECTOR_INDEX_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// ShutdownTimeout falls back to 15s when the setting is not positive.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.App.ShutdownTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) VectorAddr() string {
	return fmt.Sprintf("%s:%d", c.Vector.Host, c.Vector.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Source.User,
		c.Source.Password,
		c.Source.Host,
		c.Source.Port,
		c.Source.DB,
		c.Source.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "ragchat",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",

			ShutdownTimeoutSeconds: 15,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-5",
			EmbeddingModel: "text-embedding-3-small",
			OllamaHost:     "http://localhost:11434",
			TimeoutSeconds: 90,
		},
		Vector: VectorConfig{
			Host: "127.0.0.1",
			Port: 6334,
		},
		RabbitMQ: RabbitMQConfig{
			EventQueue: "chat.events",
		},
		Source: SourceConfig{
			Driver:     "sqlite",
			SQLitePath: "data/faq.db",
			Host:       "127.0.0.1",
			Port:       3306,
			User:       "root",
			DB:         "ragchat",
			Params:     "parseTime=true&loc=Local&charset=utf8mb4",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.ShutdownTimeoutSeconds = getEnvAsInt("APP_SHUTDOWN_TIMEOUT_SECONDS", cfg.App.ShutdownTimeoutSeconds)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.EmbeddingModel = getEnv("LLM_EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)
	cfg.LLM.OllamaHost = getEnv("OLLAMA_HOST", cfg.LLM.OllamaHost)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Vector.Host = getEnv("VECTOR_HOST", cfg.Vector.Host)
	cfg.Vector.Port = getEnvAsInt("VECTOR_PORT", cfg.Vector.Port)
	cfg.Vector.APIKey = getEnv("VECTOR_API_KEY", cfg.Vector.APIKey)
	cfg.Vector.IndexName = getEnv("VECTOR_INDEX_NAME", cfg.Vector.IndexName)
	cfg.Vector.UseTLS = getEnvAsBool("VECTOR_USE_TLS", cfg.Vector.UseTLS)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EventQueue = getEnv("RABBITMQ_EVENT_QUEUE", cfg.RabbitMQ.EventQueue)

	cfg.Source.Driver = getEnv("SOURCE_DRIVER", cfg.Source.Driver)
	cfg.Source.SQLitePath = getEnv("SOURCE_SQLITE_PATH", cfg.Source.SQLitePath)
	cfg.Source.Host = getEnv("MYSQL_HOST", cfg.Source.Host)
	cfg.Source.Port = getEnvAsInt("MYSQL_PORT", cfg.Source.Port)
	cfg.Source.User = getEnv("MYSQL_USER", cfg.Source.User)
	cfg.Source.Password = getEnv("MYSQL_PASSWORD", cfg.Source.Password)
	cfg.Source.DB = getEnv("MYSQL_DB", cfg.Source.DB)
	cfg.Source.Params = getEnv("MYSQL_PARAMS", cfg.Source.Params)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
