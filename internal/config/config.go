package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	LLM      LLMConfig      `toml:"llm"`
	Chat     ChatConfig     `toml:"chat"`
	Backfill BackfillConfig `toml:"backfill"`
	MySQL    MySQLConfig    `toml:"mysql"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`
}

// ChatConfig tunes the retrieval pipeline and selects the history/fanout
// backends for this deployment.
type ChatConfig struct {
	TopK              int    `toml:"top_k"`
	ExcerptChars      int    `toml:"excerpt_chars"`
	HistoryBackend    string `toml:"history_backend"` // mysql | redis | memory
	FanoutBackend     string `toml:"fanout_backend"`  // hub | redis
	HistoryTTLSeconds int    `toml:"history_ttl_seconds"`
}

type BackfillConfig struct {
	IntervalMillis int `toml:"interval_ms"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type RabbitMQConfig struct {
	URL             string `toml:"url"`
	TranscriptQueue string `toml:"transcript_queue"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

// NeedsRedis reports whether the configured backends require a Redis connection.
func (c *Config) NeedsRedis() bool {
	return c.Chat.HistoryBackend == "redis" || c.Chat.FanoutBackend == "redis"
}

// TranscriptsEnabled reports whether the async transcript archive is configured.
func (c *Config) TranscriptsEnabled() bool {
	return c.RabbitMQ.URL != ""
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "newsbot",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKey:         "",
			ChatModel:      "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Chat: ChatConfig{
			TopK:              3,
			ExcerptChars:      1000,
			HistoryBackend:    "mysql",
			FanoutBackend:     "hub",
			HistoryTTLSeconds: 0,
		},
		Backfill: BackfillConfig{
			IntervalMillis: 500,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "newsbot",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		RabbitMQ: RabbitMQConfig{
			URL:             "",
			TranscriptQueue: "chat.transcript.persist",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.ChatModel = getEnv("LLM_CHAT_MODEL", cfg.LLM.ChatModel)
	cfg.LLM.EmbeddingModel = getEnv("LLM_EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)

	cfg.Chat.TopK = getEnvAsInt("CHAT_TOP_K", cfg.Chat.TopK)
	cfg.Chat.ExcerptChars = getEnvAsInt("CHAT_EXCERPT_CHARS", cfg.Chat.ExcerptChars)
	cfg.Chat.HistoryBackend = getEnv("CHAT_HISTORY_BACKEND", cfg.Chat.HistoryBackend)
	cfg.Chat.FanoutBackend = getEnv("CHAT_FANOUT_BACKEND", cfg.Chat.FanoutBackend)
	cfg.Chat.HistoryTTLSeconds = getEnvAsInt("CHAT_HISTORY_TTL_SECONDS", cfg.Chat.HistoryTTLSeconds)

	cfg.Backfill.IntervalMillis = getEnvAsInt("BACKFILL_INTERVAL_MS", cfg.Backfill.IntervalMillis)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.TranscriptQueue = getEnv("RABBITMQ_TRANSCRIPT_QUEUE", cfg.RabbitMQ.TranscriptQueue)
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
