package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icco/movies/models"
	"gorm.io/gorm"
)

// RunMigrations makes sure the schema exists. Tables are created when
// missing; existing tables are left exactly as they are.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	ctx := context.Background()

	if db.Dialector.Name() == "sqlite" {
		if err := enableSQLiteOptimizations(ctx, db, logger); err != nil {
			return fmt.Errorf("failed to enable SQLite optimizations: %w", err)
		}
	}

	migrator := db.WithContext(ctx).Migrator()
	if migrator.HasTable(&models.Movie{}) {
		logger.Debug("Table already exists", slog.String("table", models.Movie{}.TableName()))
		return nil
	}

	if err := migrator.CreateTable(&models.Movie{}); err != nil {
		return fmt.Errorf("failed to create table %s: %w", models.Movie{}.TableName(), err)
	}
	logger.Info("Created table", slog.String("table", models.Movie{}.TableName()))

	return nil
}

// enableSQLiteOptimizations enables SQLite-specific optimizations
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	optimizations := []string{
		"PRAGMA journal_mode=WAL",   // Readers do not block the writer
		"PRAGMA synchronous=NORMAL", // Safe with WAL
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range optimizations {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		} else {
			logger.Debug("Successfully executed pragma", slog.String("pragma", pragma))
		}
	}

	return nil
}
