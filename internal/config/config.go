package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	AWS      AWSConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Auth     AuthConfig
	Advisor  AdvisorConfig

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
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
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

// AWSConfig names the buckets used for uploaded PDFs and the course catalog.
type AWSConfig struct {
	Region           string
	PDFBucket        string
	CourseBucket     string
	CoursesKey       string
	PrerequisitesKey string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	ProfileWriterShards int
}

type AuthConfig struct {
	// AllowedEmailDomain restricts first sign-in to one email domain. Empty allows all.
	AllowedEmailDomain string
}

type AdvisorConfig struct {
	CourseLimit  int
	HistoryLimit int
}

func Load() *Config {
	return &Config{
		EnvFileLoaded: godotenv.Load() == nil,
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Env:  strings.ToLower(getEnv("ENV", "development")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "huskytrack"),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "huskytrack_courses"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		AWS: AWSConfig{
			Region:           firstEnv([]string{"AWS_REGION", "AWS_DEFAULT_REGION", "AWS_REGION_ENV"}, "us-east-1"),
			PDFBucket:        getEnv("S3_BUCKET", "huskytrack-pdfs"),
			CourseBucket:     getEnv("COURSES_BUCKET", "huskytrack-data"),
			CoursesKey:       getEnv("COURSES_KEY", "courses.csv"),
			PrerequisitesKey: getEnv("PREREQUISITES_KEY", "prerequisites.csv"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			ProfileWriterShards: getEnvAsInt("PROFILE_WRITER_SHARDS", 4),
		},
		Auth: AuthConfig{
			AllowedEmailDomain: strings.TrimPrefix(getEnv("ALLOWED_EMAIL_DOMAIN", ""), "@"),
		},
		Advisor: AdvisorConfig{
			CourseLimit:  getEnvAsInt("ADVISOR_COURSE_LIMIT", 15),
			HistoryLimit: getEnvAsInt("ADVISOR_HISTORY_LIMIT", 10),
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

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// NewLogger builds the process logger. Development gets debug level.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
