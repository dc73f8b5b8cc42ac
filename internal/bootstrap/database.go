package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/course"
	"github.com/mo-amir99/techboost-server-go/internal/features/enrollment"
	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/internal/features/statistic"
	"github.com/mo-amir99/techboost-server-go/internal/features/user"
	"github.com/mo-amir99/techboost-server-go/pkg/config"
	"github.com/mo-amir99/techboost-server-go/pkg/database/migrations"
)

func init() {
	migrations.Register("0001_enable_pgcrypto", func(tx *gorm.DB) error {
		return tx.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error
	})
	migrations.Register("0002_statistics_average_range", func(tx *gorm.DB) error {
		return tx.Exec(`ALTER TABLE statistics ADD CONSTRAINT chk_statistics_average_completion
			CHECK (average_completion >= 0 AND average_completion <= 100)`).Error
	})
	migrations.Register("0003_backfill_statistics", func(tx *gorm.DB) error {
		_, err := statistic.NewGormStore(tx).Reconcile(tx.Statement.Context)
		return err
	})
}

// Models lists every table owned by the server, parents first.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&course.Course{},
		&lesson.Lesson{},
		&enrollment.Entry{},
		&statistic.Statistic{},
	}
}

// Migrate creates or updates the schema and then applies registered data migrations.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := migrations.Run(ctx, db, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// ApplyDatabaseMigrations runs database migrations when enabled via configuration.
func ApplyDatabaseMigrations(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.RunMigrations {
		logger.Info("database migrations skipped", slog.String("env_var", "TECHBOOST_DB_RUN_MIGRATIONS=false"))
		return nil
	}

	if err := Migrate(ctx, db, logger); err != nil {
		return err
	}

	logger.Info("database migrations applied successfully")
	return nil
}
