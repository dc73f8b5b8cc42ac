// Package dbtest builds gorm handles for tests that only inspect generated SQL.
package dbtest

import (
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DryRun returns a postgres-dialect gorm handle that never reaches a server.
func DryRun(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

// Normalize collapses whitespace so assertions survive query formatting.
func Normalize(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
