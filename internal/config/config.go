package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Ingest   IngestConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	MaxUploadSizeMB    int
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-1.5-flash", "llama3"
	Temperature       float64
	TopK              int
}

type IngestConfig struct {
	VectorStoreProvider string // "badger" or "pgvector"
	VectorStorePath     string
	ChunkSize           int
	ChunkOverlap        int
	EmbedWorkers        int
}

type ChatConfig struct {
	SessionTTLMinutes int // 0 = sessions never expire
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			MaxUploadSizeMB:    getEnvAsInt("MAX_UPLOAD_SIZE_MB", 10),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			TopK:              getEnvAsInt("RETRIEVAL_TOP_K", 4),
		},
		Ingest: IngestConfig{
			VectorStoreProvider: getEnv("VECTOR_STORE_PROVIDER", "badger"),
			VectorStorePath:     getEnv("VECTOR_STORE_PATH", "./vector_db"),
			ChunkSize:           getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:        getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbedWorkers:        getEnvAsInt("EMBED_WORKERS", 4),
		},
		Chat: ChatConfig{
			SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
