// ABOUTME: Centralized configuration for the cerebro service
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the cerebro system
type Config struct {
	// Storage
	DBPath string

	// OpenAI settings
	OpenAIKey          string
	ChatModel          string
	EmbeddingModel     string
	TranscriptionModel string
	CaptionModel       string
	Timeout            time.Duration
	MaxRetries         int
	RetryDelay         time.Duration

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopKResults     int
	RerankTopN      int
	VectorDimension int

	// Ingestion
	MaxUploadBytes  int64
	IngestWorkers   int
	JobTimeout      time.Duration
	JobSoftTimeout  time.Duration
	WebFetchTimeout time.Duration

	// HTTP server
	ListenAddr string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:             getEnv("CEREBRO_DB_PATH", ""),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		ChatModel:          getEnv("CEREBRO_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:     getEnv("CEREBRO_EMBEDDING_MODEL", "text-embedding-3-small"),
		TranscriptionModel: getEnv("CEREBRO_TRANSCRIPTION_MODEL", "whisper-1"),
		CaptionModel:       getEnv("CEREBRO_CAPTION_MODEL", "gpt-4o"),
		Timeout:            getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:         getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:         getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		ChunkSize:          getEnvInt("CEREBRO_CHUNK_SIZE", 512),
		ChunkOverlap:       getEnvInt("CEREBRO_CHUNK_OVERLAP", 50),
		TopKResults:        getEnvInt("CEREBRO_TOP_K", 20),
		RerankTopN:         getEnvInt("CEREBRO_RERANK_TOP_N", 10),
		VectorDimension:    getEnvInt("CEREBRO_VECTOR_DIMENSION", 1536),
		MaxUploadBytes:     getEnvInt64("CEREBRO_MAX_UPLOAD_BYTES", 50*1024*1024),
		IngestWorkers:      getEnvInt("CEREBRO_INGEST_WORKERS", 4),
		JobTimeout:         getEnvDuration("CEREBRO_JOB_TIMEOUT", time.Hour),
		JobSoftTimeout:     getEnvDuration("CEREBRO_JOB_SOFT_TIMEOUT", 55*time.Minute),
		WebFetchTimeout:    getEnvDuration("CEREBRO_WEB_FETCH_TIMEOUT", 30*time.Second),
		ListenAddr:         getEnv("CEREBRO_LISTEN_ADDR", ":8000"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CEREBRO_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CEREBRO_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("CEREBRO_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.TopKResults <= 0 {
		return fmt.Errorf("CEREBRO_TOP_K must be positive, got %d", c.TopKResults)
	}
	if c.RerankTopN <= 0 || c.RerankTopN > c.TopKResults {
		return fmt.Errorf("CEREBRO_RERANK_TOP_N must be in (0, top_k], got %d", c.RerankTopN)
	}
	if c.IngestWorkers <= 0 {
		return fmt.Errorf("CEREBRO_INGEST_WORKERS must be positive, got %d", c.IngestWorkers)
	}
	if c.JobSoftTimeout >= c.JobTimeout {
		return fmt.Errorf("CEREBRO_JOB_SOFT_TIMEOUT must be below CEREBRO_JOB_TIMEOUT")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
