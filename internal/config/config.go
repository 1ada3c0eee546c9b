package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-intake/internal/apperror"
)

const (
	DocumentStoreMongo    = "mongo"
	DocumentStorePostgres = "postgres"

	BlobStoreSupabase = "supabase"
	BlobStoreS3       = "s3"
	BlobStoreLocal    = "local"

	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"

	ExtractionModeModel = "model"
	ExtractionModeRules = "rules"
)

type Config struct {
	Server      ServerConfig
	Mongo       MongoConfig
	Postgres    PostgresConfig
	Blob        BlobConfig
	Supabase    SupabaseConfig
	S3          S3Config
	Model       ModelConfig
	HuggingFace HuggingFaceConfig
	Gemini      GeminiConfig
	Upload      UploadConfig
	Cleanup     CleanupConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	DocumentStore   string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type BlobConfig struct {
	Backend    string
	Timeout    time.Duration
	UploadPath string
}

type SupabaseConfig struct {
	URL    string
	Key    string
	Bucket string
}

type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

type ModelConfig struct {
	Provider       string
	ExtractionMode string
	Timeout        time.Duration
	Retries        int
}

type HuggingFaceConfig struct {
	APIKey          string
	APIURL          string
	ExtractionModel string
	QAModel         string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type UploadConfig struct {
	MaxFileSize int64
}

type CleanupConfig struct {
	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Env:             getEnv("ENV", "development"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", "30s"),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", "90s"),
			RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 30),
			RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
			DocumentStore:   strings.ToLower(getEnv("DOCUMENT_STORE", DocumentStoreMongo)),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Database:   getEnv("MONGODB_DATABASE", "resume_db"),
			Collection: getEnv("MONGODB_COLLECTION", "candidates"),
			Timeout:    getEnvAsDuration("MONGODB_TIMEOUT", "10s"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "resume_db"),
		},
		Blob: BlobConfig{
			Backend:    strings.ToLower(getEnv("BLOB_STORE", BlobStoreSupabase)),
			Timeout:    getEnvAsDuration("BLOB_TIMEOUT", "30s"),
			UploadPath: getEnv("UPLOAD_PATH", "./uploads"),
		},
		Supabase: SupabaseConfig{
			URL:    strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			Key:    getEnv("SUPABASE_KEY", ""),
			Bucket: getEnv("SUPABASE_BUCKET_NAME", "resumes"),
		},
		S3: S3Config{
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			Bucket:        getEnv("S3_BUCKET", "resumes"),
			PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		},
		Model: ModelConfig{
			Provider:       strings.ToLower(getEnv("MODEL_PROVIDER", ProviderHuggingFace)),
			ExtractionMode: strings.ToLower(getEnv("EXTRACTION_MODE", ExtractionModeModel)),
			Timeout:        getEnvAsDuration("MODEL_TIMEOUT", "30s"),
			Retries:        getEnvAsInt("MODEL_RETRIES", 1),
		},
		HuggingFace: HuggingFaceConfig{
			APIKey:          getEnv("HUGGINGFACE_API_KEY", ""),
			APIURL:          strings.TrimRight(getEnv("HF_API_URL", "https://api-inference.huggingface.co/models"), "/"),
			ExtractionModel: getEnv("HF_EXTRACTION_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
			QAModel:         getEnv("HF_QA_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Cleanup: CleanupConfig{
			Concurrency: getEnvAsInt("CLEANUP_CONCURRENCY", 2),
			MaxAttempts: getEnvAsInt("CLEANUP_MAX_ATTEMPTS", 3),
			RetryDelay:  getEnvAsDuration("CLEANUP_RETRY_DELAY", "2s"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate reports every missing or invalid setting for the selected backends at once.
func (c *Config) Validate() error {
	var problems []string
	require := func(value, key string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, key+" is required")
		}
	}

	switch c.Server.DocumentStore {
	case DocumentStoreMongo:
		require(c.Mongo.URI, "MONGODB_URI")
		if c.Mongo.URI != "" && !strings.HasPrefix(c.Mongo.URI, "mongodb://") && !strings.HasPrefix(c.Mongo.URI, "mongodb+srv://") {
			problems = append(problems, "MONGODB_URI must start with mongodb:// or mongodb+srv://")
		}
		require(c.Mongo.Database, "MONGODB_DATABASE")
		require(c.Mongo.Collection, "MONGODB_COLLECTION")
	case DocumentStorePostgres:
		require(c.Postgres.Host, "DB_HOST")
		require(c.Postgres.User, "DB_USER")
		require(c.Postgres.DBName, "DB_NAME")
	default:
		problems = append(problems, fmt.Sprintf("DOCUMENT_STORE %q is not one of mongo, postgres", c.Server.DocumentStore))
	}

	switch c.Blob.Backend {
	case BlobStoreSupabase:
		require(c.Supabase.URL, "SUPABASE_URL")
		require(c.Supabase.Key, "SUPABASE_KEY")
		require(c.Supabase.Bucket, "SUPABASE_BUCKET_NAME")
	case BlobStoreS3:
		require(c.S3.Endpoint, "S3_ENDPOINT")
		require(c.S3.AccessKey, "S3_ACCESS_KEY")
		require(c.S3.SecretKey, "S3_SECRET_KEY")
		require(c.S3.Bucket, "S3_BUCKET")
	case BlobStoreLocal:
		require(c.Blob.UploadPath, "UPLOAD_PATH")
	default:
		problems = append(problems, fmt.Sprintf("BLOB_STORE %q is not one of supabase, s3, local", c.Blob.Backend))
	}

	switch c.Model.Provider {
	case ProviderHuggingFace:
		require(c.HuggingFace.APIKey, "HUGGINGFACE_API_KEY")
		require(c.HuggingFace.QAModel, "HF_QA_MODEL")
		if c.Model.ExtractionMode == ExtractionModeModel {
			require(c.HuggingFace.ExtractionModel, "HF_EXTRACTION_MODEL")
		}
	case ProviderGemini:
		require(c.Gemini.APIKey, "GEMINI_API_KEY")
	default:
		problems = append(problems, fmt.Sprintf("MODEL_PROVIDER %q is not one of huggingface, gemini", c.Model.Provider))
	}

	if c.Model.ExtractionMode != ExtractionModeModel && c.Model.ExtractionMode != ExtractionModeRules {
		problems = append(problems, fmt.Sprintf("EXTRACTION_MODE %q is not one of model, rules", c.Model.ExtractionMode))
	}
	if c.Model.Timeout <= 0 {
		problems = append(problems, "MODEL_TIMEOUT must be positive")
	}
	if c.Model.Retries < 0 {
		problems = append(problems, "MODEL_RETRIES must not be negative")
	}
	if c.Upload.MaxFileSize <= 0 {
		problems = append(problems, "MAX_FILE_SIZE must be positive")
	}
	if c.Cleanup.Concurrency <= 0 {
		problems = append(problems, "CLEANUP_CONCURRENCY must be positive")
	}

	if len(problems) > 0 {
		return apperror.New(apperror.CodeConfig, strings.Join(problems, "; "), apperror.ErrValidation, nil)
	}
	return nil
}

// ModelNames returns the extraction and Q&A model identifiers for the selected provider.
func (c *Config) ModelNames() (extraction, qa string) {
	if c.Model.Provider == ProviderGemini {
		return c.Gemini.Model, c.Gemini.Model
	}
	return c.HuggingFace.ExtractionModel, c.HuggingFace.QAModel
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.DBName,
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
