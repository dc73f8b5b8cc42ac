package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mo-amir99/techboost-server-go/internal/features/enrollment"
	"github.com/mo-amir99/techboost-server-go/internal/features/statistic"
	"github.com/mo-amir99/techboost-server-go/internal/features/user"
	"github.com/mo-amir99/techboost-server-go/pkg/config"
	"github.com/mo-amir99/techboost-server-go/pkg/database/migrations"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
)

func TestModels_ParentsBeforeChildren(t *testing.T) {
	models := Models()
	assert.Len(t, models, 5)
	assert.IsType(t, &user.User{}, models[0])
	assert.IsType(t, &enrollment.Entry{}, models[3])
	assert.IsType(t, &statistic.Statistic{}, models[4])
}

func TestMigrationsRegisteredInOrder(t *testing.T) {
	names := migrations.Names()
	assert.Subset(t, names, []string{
		"0001_enable_pgcrypto",
		"0002_statistics_average_range",
		"0003_backfill_statistics",
	})
}

func TestEnsureAdmin_SkipsWithoutCredentials(t *testing.T) {
	err := EnsureAdmin(context.Background(), nil, config.AuthConfig{AdminEmail: "admin@example.com"}, logger.Discard())
	assert.NoError(t, err)
}

func TestIsUndefinedTableError(t *testing.T) {
	assert.True(t, isUndefinedTableError(errors.New(`ERROR: relation "users" does not exist (SQLSTATE 42P01)`)))
	assert.False(t, isUndefinedTableError(errors.New("connection refused")))
	assert.False(t, isUndefinedTableError(nil))
}
