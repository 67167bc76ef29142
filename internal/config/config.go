package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	DBDsn         string           `json:"db_dsn"`
	Port          int              `json:"port"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	AdminUser     string           `json:"admin_user"`
	AdminPassHash string           `json:"admin_pass_hash"`
	CORSOrigins   []string         `json:"cors_origins"`
	LogConfig     logger.LogConfig `json:"log_config"`
	FileStore     FileStoreConfig  `json:"file_store"`
	AI            AIConfig         `json:"ai"`
	RAG           RAGConfig        `json:"rag"`
	Jobs          JobsConfig       `json:"jobs"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Completion ModelConfig     `json:"completion"`
	Embedding  EmbeddingConfig `json:"embedding"`
}

type ModelConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type EmbeddingConfig struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	Data      interface{} `json:"data"`
}

type RAGConfig struct {
	ChunkSize             int `json:"chunk_size"`
	ChunkOverlap          int `json:"chunk_overlap"`
	TopK                  int `json:"top_k"`
	MaxRetries            int `json:"max_retries"`
	InitialBackoffMs      int `json:"initial_backoff_ms"`
	MaxBackoffMs          int `json:"max_backoff_ms"`
	AttemptTimeoutSeconds int `json:"attempt_timeout_seconds"`
}

type JobsConfig struct {
	IndexRetrySpec string `json:"index_retry_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBDsn == "" {
		return nil, fmt.Errorf("db_dsn is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.AdminUser == "" || cfg.AdminPassHash == "" {
		return nil, fmt.Errorf("admin_user and admin_pass_hash are required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.AI.Completion.Provider == "" || cfg.AI.Completion.Model == "" {
		return nil, fmt.Errorf("ai.completion provider/model are required")
	}
	if cfg.AI.Embedding.Provider == "" || cfg.AI.Embedding.Model == "" {
		return nil, fmt.Errorf("ai.embedding provider/model are required")
	}
	if cfg.AI.Embedding.Dimension == 0 {
		cfg.AI.Embedding.Dimension = 1536
	}
	applyRAGDefaults(&cfg.RAG)
	if cfg.Jobs.IndexRetrySpec == "" {
		cfg.Jobs.IndexRetrySpec = "*/10 * * * *"
	}
	return &cfg, nil
}

func applyRAGDefaults(rag *RAGConfig) {
	if rag.ChunkSize == 0 {
		rag.ChunkSize = 1000
	}
	if rag.ChunkOverlap == 0 {
		rag.ChunkOverlap = 200
	}
	if rag.ChunkOverlap >= rag.ChunkSize {
		rag.ChunkOverlap = rag.ChunkSize / 5
	}
	if rag.TopK == 0 {
		rag.TopK = 5
	}
	if rag.MaxRetries == 0 {
		rag.MaxRetries = 3
	}
	if rag.InitialBackoffMs == 0 {
		rag.InitialBackoffMs = 1000
	}
	if rag.MaxBackoffMs == 0 {
		rag.MaxBackoffMs = 10000
	}
	if rag.AttemptTimeoutSeconds == 0 {
		rag.AttemptTimeoutSeconds = 30
	}
}
