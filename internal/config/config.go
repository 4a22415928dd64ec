package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	LLM          LLMConfig
	Classifier   ClassifierConfig
	Resolution   ResolutionConfig
	Learning     LearningConfig
	Notification NotificationConfig
	Seed         SeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	MigrationsDir  string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	DialTimeoutSec int
}

// MongoConfig selects the optional MongoDB knowledge backend.
type MongoConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines staff authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	Bootstrap             BootstrapConfig
}

// BootstrapConfig describes the admin account created on first start.
type BootstrapConfig struct {
	Email    string
	Password string
	Name     string
}

// LLMConfig selects and configures the external classifier provider.
type LLMConfig struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	Temperature    float64
}

// ClassifierConfig bounds the external classification call.
type ClassifierConfig struct {
	TimeoutSeconds       int
	BreakerThreshold     int
	BreakerResetSeconds  int
	CacheTTLMinutes      int
	EmbeddingCacheTTLMin int
}

// ResolutionConfig holds the auto-resolution policy knobs.
type ResolutionConfig struct {
	AutoResolveCategories []string
	MinClassification     float64
	MinSolution           float64
}

// LearningConfig controls asynchronous learning side effects.
type LearningConfig struct {
	TimeoutSeconds   int
	TrendingDays     int
	PoolSize         int
	MaxBlockingTasks int
	PatternSweepCron string
	KnowledgeBackend string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// SeedConfig points at optional seed data loaded on startup.
type SeedConfig struct {
	KnowledgeFile string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	backend := strings.ToLower(getEnv("KNOWLEDGE_BACKEND", "postgres"))
	if backend != "postgres" && backend != "mongo" {
		return nil, fmt.Errorf("invalid KNOWLEDGE_BACKEND %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-intake-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			DialTimeoutSec: getEnvAsInt("REDIS_DIAL_TIMEOUT_SECONDS", 3),
		},
		Mongo: MongoConfig{
			URI:         os.Getenv("MONGO_URI"),
			Database:    getEnv("MONGO_DATABASE", "support_intake"),
			MaxPoolSize: uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 20)),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			Bootstrap: BootstrapConfig{
				Email:    os.Getenv("STAFF_BOOTSTRAP_EMAIL"),
				Password: os.Getenv("STAFF_BOOTSTRAP_PASSWORD"),
				Name:     getEnv("STAFF_BOOTSTRAP_NAME", "Administrator"),
			},
		},
		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnv("LLM_PROVIDER", "none")),
			Model:          os.Getenv("LLM_MODEL"),
			APIKey:         os.Getenv("LLM_API_KEY"),
			BaseURL:        os.Getenv("LLM_BASE_URL"),
			EmbeddingModel: os.Getenv("LLM_EMBEDDING_MODEL"),
			Temperature:    temperature,
		},
		Classifier: ClassifierConfig{
			TimeoutSeconds:       getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 10),
			BreakerThreshold:     getEnvAsInt("CLASSIFIER_BREAKER_THRESHOLD", 5),
			BreakerResetSeconds:  getEnvAsInt("CLASSIFIER_BREAKER_RESET_SECONDS", 30),
			CacheTTLMinutes:      getEnvAsInt("CLASSIFIER_CACHE_TTL_MINUTES", 60),
			EmbeddingCacheTTLMin: getEnvAsInt("EMBEDDING_CACHE_TTL_MINUTES", 1440),
		},
		Resolution: ResolutionConfig{
			AutoResolveCategories: getEnvAsList("AUTO_RESOLVE_CATEGORIES", []string{"Password"}),
			MinClassification:     getEnvAsFloat("AUTO_RESOLVE_MIN_CLASSIFICATION_CONFIDENCE", 0.8),
			MinSolution:           getEnvAsFloat("AUTO_RESOLVE_MIN_SOLUTION_CONFIDENCE", 0.9),
		},
		Learning: LearningConfig{
			TimeoutSeconds:   getEnvAsInt("LEARNING_TIMEOUT_SECONDS", 30),
			TrendingDays:     getEnvAsInt("TRENDING_DAYS", 7),
			PoolSize:         getEnvAsInt("LEARNING_POOL_SIZE", 16),
			MaxBlockingTasks: getEnvAsInt("LEARNING_POOL_MAX_BLOCKING", 256),
			PatternSweepCron: getEnv("PATTERN_SWEEP_CRON", "0 * * * *"),
			KnowledgeBackend: backend,
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Seed: SeedConfig{
			KnowledgeFile: os.Getenv("KNOWLEDGE_SEED_FILE"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the bound on a single classifier call.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BreakerReset returns how long the circuit stays open.
func (c ClassifierConfig) BreakerReset() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

// CacheTTL returns the classification cache lifetime.
func (c ClassifierConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// EmbeddingCacheTTL returns the embedding cache lifetime.
func (c ClassifierConfig) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.EmbeddingCacheTTLMin) * time.Minute
}

// Timeout bounds one round of learning side effects.
func (l LearningConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
