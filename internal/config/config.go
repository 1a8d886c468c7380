package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultAppSecret 未设置 APP_SECRET 时的默认值，生产环境下不能用来签发管理 Token
const DefaultAppSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	Port        string
	SiteName    string
	WebDir      string

	LogLevel  string
	LogFormat string
	// LogFile 非空时额外以 JSON 追加写入该文件
	LogFile string

	// 向量库
	VectorBackend       string
	ChromaURL           string
	QdrantHost          string
	QdrantPort          int
	QdrantAPIKey        string
	EmbeddingDimensions int

	// Embedding (Ollama)
	OllamaHost         string
	OllamaModel        string
	EmbeddingCacheSize int

	// Agent (Gemini)
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	AgentMaxSteps int

	TrendingCacheTTL time.Duration

	// 离线加载 / TMDB 抓取
	IndexWorkers  int
	IndexLimit    int
	IndexMinVotes int
	TMDBToken     string
	TMDBBaseURL   string
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "moviebot")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		AppSecret:   getEnv("APP_SECRET", DefaultAppSecret),
		DatabaseURL: dbURL,
		Port:        getEnv("PORT", "8000"),
		SiteName:    getEnv("SITE_NAME", "Movie Chatbot"),
		WebDir:      getEnv("WEB_DIR", "./web"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "pretty"),
		LogFile:   getEnv("LOG_FILE", ""),

		VectorBackend:       getEnv("VECTOR_BACKEND", "pgvector"),
		ChromaURL:           getEnv("CHROMA_URL", "http://localhost:8001"),
		QdrantHost:          getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:          getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:        getEnv("QDRANT_API_KEY", ""),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),

		OllamaHost:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "nomic-embed-text"),
		EmbeddingCacheSize: getEnvInt("EMBEDDING_CACHE_SIZE", 1000),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		AgentMaxSteps: getEnvInt("AGENT_MAX_STEPS", 5),

		TrendingCacheTTL: getEnvDuration("TRENDING_CACHE_TTL", 5*time.Minute),

		IndexWorkers:  getEnvInt("INDEX_WORKERS", 4),
		IndexLimit:    getEnvInt("INDEX_LIMIT", 10000),
		IndexMinVotes: getEnvInt("INDEX_MIN_VOTES", 50),
		TMDBToken:     getEnv("TMDB_TOKEN", getEnv("TMDB_API_KEY", "")),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
	}
}

// AdminEnabled 生产环境使用默认密钥时关闭管理接口
func (c *Config) AdminEnabled() bool {
	return c.Env != "production" || c.AppSecret != DefaultAppSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration 支持 "5m" 这类格式，纯数字按秒处理
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
