package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	GigaChat GigaChatConfig
	RAG      RAGConfig
	Storage  StorageConfig
	Webhook  WebhookConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	EmbeddingModel     string
	InsecureSkipVerify bool
}

// RAGConfig carries the retrieval tuning for both callers: chat uses a
// conservative threshold over few chunks, exam generation a permissive one
// over many chunks to maximize coverage of the topic's material.
type RAGConfig struct {
	VectorBackend      string // "postgres" or "memory"
	EmbeddingDimension int
	ChunkSentences     int
	ChunkOverlap       int
	ChatLimit          int
	ChatThreshold      float64
	ExamLimit          int
	ExamThreshold      float64
}

type StorageConfig struct {
	UploadDir string
}

type WebhookConfig struct {
	ClerkSecret string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables still apply (Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	embeddingDim, _ := strconv.Atoi(getEnv("RAG_EMBEDDING_DIMENSION", "4096"))
	chunkSentences, _ := strconv.Atoi(getEnv("RAG_CHUNK_SENTENCES", "5"))
	chunkOverlap, _ := strconv.Atoi(getEnv("RAG_CHUNK_OVERLAP", "1"))
	chatLimit, _ := strconv.Atoi(getEnv("RAG_CHAT_LIMIT", "10"))
	chatThreshold, _ := strconv.ParseFloat(getEnv("RAG_CHAT_THRESHOLD", "0.3"), 64)
	examLimit, _ := strconv.Atoi(getEnv("RAG_EXAM_LIMIT", "20"))
	examThreshold, _ := strconv.ParseFloat(getEnv("RAG_EXAM_THRESHOLD", "0.1"), 64)
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "aula_rag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			EmbeddingModel:     getEnv("GIGACHAT_EMBEDDING_MODEL", "EmbeddingsGigaR"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		RAG: RAGConfig{
			VectorBackend:      getEnv("RAG_VECTOR_BACKEND", "postgres"),
			EmbeddingDimension: embeddingDim,
			ChunkSentences:     chunkSentences,
			ChunkOverlap:       chunkOverlap,
			ChatLimit:          chatLimit,
			ChatThreshold:      chatThreshold,
			ExamLimit:          examLimit,
			ExamThreshold:      examThreshold,
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		},
		Webhook: WebhookConfig{
			ClerkSecret: getEnv("CLERK_WEBHOOK_SECRET", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
