package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	ScreenshotStoreNone  = "none"
	ScreenshotStoreLocal = "local"
	ScreenshotStoreS3    = "s3"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string

	StorageBackend string
	DatabaseURL    string
	RunMigrations  bool

	LLMProvider     string
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMTimeout      time.Duration

	RedisURL string
	CacheTTL time.Duration

	ScreenshotStore string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	AnalyzeRatePerMinute float64
	AnalyzeRateBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	backend := normalizeStorageBackend(getEnv("STORAGE_BACKEND", ""), dbURL)

	if env == "production" && backend == StorageMemory {
		log.Printf("STORAGE_BACKEND=memory in production; results will not survive restarts")
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderOpenAI))

	return Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  env,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		StorageBackend:       backend,
		DatabaseURL:          dbURL,
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		LLMProvider:          provider,
		LLMModel:             getEnv("LLM_MODEL", defaultModel(provider)),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		LLMTimeout:           getEnvSeconds("LLM_TIMEOUT_SECONDS", 120*time.Second),
		RedisURL:             getEnv("REDIS_URL", ""),
		CacheTTL:             getEnvSeconds("CACHE_TTL_SECONDS", time.Hour),
		ScreenshotStore:      normalizeScreenshotStore(getEnv("SCREENSHOT_STORE", ScreenshotStoreNone)),
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", "screenshots/"),
		SSEKMSKeyID:          getEnv("SSE_KMS_KEY_ID", ""),
		AnalyzeRatePerMinute: getEnvFloat("ANALYZE_RATE_PER_MINUTE", 10),
		AnalyzeRateBurst:     getEnvInt("ANALYZE_RATE_BURST", 5),
	}
}

// IsDevLike reports whether the environment is a local development one.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid number: %v", key, err)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config %s invalid seconds: %q", key, raw)
		return def
	}
	return time.Duration(parsed) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// normalizeStorageBackend picks postgres when a DATABASE_URL is present and no
// explicit backend was requested.
func normalizeStorageBackend(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql", "supabase":
		return StoragePostgres
	case "memory", "mem":
		return StorageMemory
	}
	if strings.TrimSpace(dbURL) != "" {
		return StoragePostgres
	}
	return StorageMemory
}

func normalizeScreenshotStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return ScreenshotStoreS3
	case "local":
		return ScreenshotStoreLocal
	default:
		return ScreenshotStoreNone
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "anthropic", "claude":
		return ProviderAnthropic
	case "none", "placeholder":
		return ProviderNone
	default:
		return ProviderOpenAI
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-5-20250929"
	case ProviderOpenAI:
		return "gpt-5"
	default:
		return ""
	}
}
