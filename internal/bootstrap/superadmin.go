package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/user"
	"github.com/mo-amir99/techboost-server-go/pkg/config"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// EnsureAdmin creates the configured administrator or promotes an existing account
// with that email. It does nothing when no admin credentials are configured.
func EnsureAdmin(ctx context.Context, db *gorm.DB, cfg config.AuthConfig, logger *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Debug("admin bootstrap skipped", slog.String("reason", "no admin credentials configured"))
		return nil
	}

	db = db.WithContext(ctx)

	existing, err := user.GetByEmail(db, cfg.AdminEmail)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		_, createErr := user.Create(db, user.CreateInput{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Role:     types.RoleAdmin,
		}, cfg.BcryptCost)
		if createErr != nil {
			if isUndefinedTableError(createErr) {
				logger.Warn("admin bootstrap skipped - users table missing", slog.String("email", cfg.AdminEmail))
				return nil
			}
			return fmt.Errorf("create admin: %w", createErr)
		}

		logger.Info("admin account created", slog.String("email", cfg.AdminEmail))
		return nil

	case err != nil:
		if isUndefinedTableError(err) {
			logger.Warn("admin bootstrap skipped - users table missing", slog.String("email", cfg.AdminEmail))
			return nil
		}
		return fmt.Errorf("get admin: %w", err)
	}

	if existing.Role == types.RoleAdmin {
		logger.Info("admin account already up to date", slog.String("email", cfg.AdminEmail))
		return nil
	}

	if err := db.Model(&user.User{}).Where("id = ?", existing.ID).Update("role", types.RoleAdmin).Error; err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}

	logger.Info("admin account promoted", slog.String("email", cfg.AdminEmail))
	return nil
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), `relation "users" does not exist`)
}
