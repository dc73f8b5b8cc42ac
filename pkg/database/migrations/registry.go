package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

type namedMigration struct {
	name string
	fn   func(*gorm.DB) error
}

var (
	registryMu sync.RWMutex
	registry   []namedMigration
)

// appliedMigration records a migration that has already run.
type appliedMigration struct {
	Name      string    `gorm:"primaryKey;size:200"`
	AppliedAt time.Time `gorm:"not null"`
}

func (appliedMigration) TableName() string {
	return "schema_migrations"
}

// Register adds a migration function to the registry in FIFO order.
// Names must be unique; a second registration under the same name panics.
func Register(name string, fn func(*gorm.DB) error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, m := range registry {
		if m.name == name {
			panic(fmt.Sprintf("migration %q registered twice", name))
		}
	}
	registry = append(registry, namedMigration{name: name, fn: fn})
}

// Names lists the registered migrations in execution order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, len(registry))
	for i, m := range registry {
		names[i] = m.name
	}
	return names
}

// Run executes registered migrations that have not been applied yet, each in its own transaction.
func Run(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	registryMu.RLock()
	pending := make([]namedMigration, len(registry))
	copy(pending, registry)
	registryMu.RUnlock()

	if len(pending) == 0 {
		if log != nil {
			log.Info("no database migrations registered")
		}
		return nil
	}

	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, migration := range pending {
		var count int64
		if err := db.Model(&appliedMigration{}).Where("name = ?", migration.name).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %s: %w", migration.name, err)
		}
		if count > 0 {
			continue
		}

		if log != nil {
			log.Info("running migration", slog.String("name", migration.name))
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.fn(tx); err != nil {
				return err
			}
			return tx.Create(&appliedMigration{Name: migration.name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.name, err)
		}

		if log != nil {
			log.Info("migration completed", slog.String("name", migration.name))
		}
	}

	return nil
}
