package auth

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/user"
	"github.com/mo-amir99/techboost-server-go/internal/utils/jwt"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// TokenConfig controls access token signing.
type TokenConfig struct {
	JWTSecret  string
	Expiry     time.Duration
	BcryptCost int
}

// Issue signs an access token for u.
func (cfg TokenConfig) Issue(u user.User) (string, error) {
	return jwt.GenerateAccessToken(u.ID, u.Role, cfg.JWTSecret, cfg.Expiry)
}

// Register creates a regular user account and signs a token for it.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	newUser, err := user.Create(db, user.CreateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     types.RoleUser,
	}, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	token, err := cfg.Issue(newUser)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: newUser, Token: token}, nil
}

// Login checks the credentials and signs a token.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := user.GetByEmail(db, input.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := cfg.Issue(usr)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: usr, Token: token}, nil
}
