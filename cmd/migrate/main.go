package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"errorlens-backend/internal/shared/config"
	"errorlens-backend/internal/shared/storage/db"
	"errorlens-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if err := telemetry.Configure(cfg.LogLevel); err != nil {
		os.Exit(1)
	}
	defer telemetry.Sync()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", nil)
}
