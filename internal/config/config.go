package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Upload   UploadConfig
	Matcher  MatcherConfig
	Ingest   IngestConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	EmbedModel string
	Dimension  int
}

type UploadConfig struct {
	MaxFileSize   int64
	MaxPages      int
	MaxTextLength int
	MinTextLength int
}

type MatcherConfig struct {
	SimilarityWeight float64
	AttributeWeight  float64
	TopK             int
	MaxTopK          int
	DefaultResults   int
	MaxResults       int
}

type IngestConfig struct {
	Concurrency       int
	BatchSize         int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_matcher"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "job_postings"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "gemini-embedding-001"),
			Dimension:  getEnvAsInt("EMBEDDING_DIMENSION", 1536),
		},
		Upload: UploadConfig{
			MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxPages:      getEnvAsInt("MAX_PDF_PAGES", 10),
			MaxTextLength: getEnvAsInt("MAX_TEXT_LENGTH", 50000),
			MinTextLength: getEnvAsInt("MIN_TEXT_LENGTH", 50),
		},
		Matcher: MatcherConfig{
			SimilarityWeight: getEnvAsFloat("MATCH_SIMILARITY_WEIGHT", 0.75),
			AttributeWeight:  getEnvAsFloat("MATCH_ATTRIBUTE_WEIGHT", 0.25),
			TopK:             getEnvAsInt("MATCH_TOP_K", 30),
			MaxTopK:          getEnvAsInt("MATCH_MAX_TOP_K", 50),
			DefaultResults:   getEnvAsInt("MATCH_DEFAULT_RESULTS", 10),
			MaxResults:       getEnvAsInt("MATCH_MAX_RESULTS", 50),
		},
		Ingest: IngestConfig{
			Concurrency:       getEnvAsInt("INGEST_CONCURRENCY", 3),
			BatchSize:         getEnvAsInt("INGEST_BATCH_SIZE", 100),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
