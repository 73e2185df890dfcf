package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"errorlens-backend/internal/analyses"
	"errorlens-backend/internal/llm"
	anthropicllm "errorlens-backend/internal/llm/anthropic"
	openai "errorlens-backend/internal/llm/openai"
	"errorlens-backend/internal/shared/cache"
	"errorlens-backend/internal/shared/config"
	"errorlens-backend/internal/shared/server"
	"errorlens-backend/internal/shared/server/middleware"
	"errorlens-backend/internal/shared/storage/db"
	"errorlens-backend/internal/shared/storage/object"
	localstore "errorlens-backend/internal/shared/storage/object/local"
	s3store "errorlens-backend/internal/shared/storage/object/s3"
	"errorlens-backend/internal/shared/telemetry"
)

// App holds shared dependencies built from configuration.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Cache           *cache.RedisCache
	Archive         object.ObjectStore
	LLM             llm.Client
	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
}

// Build prepares every dependency and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := telemetry.Configure(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	var repo analyses.Repo
	if sqlDB != nil {
		repo = &analyses.PGRepo{DB: sqlDB}
	} else {
		repo = analyses.NewMemoryRepo()
	}

	redisCache, err := buildCache(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if redisCache != nil {
		app.Cache = redisCache
		repo = analyses.NewCachedRepo(repo, redisCache, cfg.CacheTTL)
	}
	app.AnalysesRepo = repo

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Archive = archive

	client, err := buildLLM(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.LLM = client

	app.AnalysesService = &analyses.Service{
		Repo:     repo,
		LLM:      client,
		Archive:  archive,
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)

	var limiter *middleware.RateLimiter
	if cfg.AnalyzeRatePerMinute > 0 {
		limiter = middleware.NewRateLimiter(middleware.PerMinute(cfg.AnalyzeRatePerMinute, cfg.AnalyzeRateBurst), nil)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		Storage:         repo,
		AnalyzeLimiter:  limiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":              cfg.Env,
		"storage":          storageName(sqlDB),
		"cache":            redisCache != nil,
		"screenshot_store": cfg.ScreenshotStore,
		"llm_provider":     cfg.LLMProvider,
		"llm_model":        cfg.LLMModel,
		"prompt_version":   llm.PromptVersion,
	})
	return app, nil
}

// Close releases the database pool and cache connection.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.StorageBackend != config.StoragePostgres {
		telemetry.Info("bootstrap.storage_memory", map[string]any{"env": cfg.Env})
		return nil, nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildCache(ctx context.Context, cfg config.Config) (*cache.RedisCache, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	c, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if err := c.Ping(ctx); err != nil {
		telemetry.Warn("bootstrap.cache_unreachable", map[string]any{"error": err})
	}
	return c, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ScreenshotStore {
	case config.ScreenshotStoreS3:
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("SCREENSHOT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case config.ScreenshotStoreLocal:
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case config.ProviderAnthropic:
		client, err = anthropicllm.NewClient(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	default:
		return llm.PlaceholderClient{}, nil
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLMProvider, "error": err})
			return llm.PlaceholderClient{}, nil
		}
		return nil, err
	}
	return client, nil
}

func storageName(sqlDB *sql.DB) string {
	if sqlDB != nil {
		return config.StoragePostgres
	}
	return config.StorageMemory
}
