package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/utils/jwt"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

const identityKey = "identity"

// ErrUnknownUser is returned by an IdentityStore when the token subject no longer exists.
var ErrUnknownUser = errors.New("user not found")

// Identity is the resolved caller passed explicitly into services.
type Identity struct {
	UserID uuid.UUID
	Role   types.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == types.RoleAdmin
}

// IdentityStore resolves the current role of a user.
type IdentityStore interface {
	LookupIdentity(ctx context.Context, userID uuid.UUID) (Identity, error)
}

// GormIdentityStore reads identities from the users table.
type GormIdentityStore struct {
	db *gorm.DB
}

// NewGormIdentityStore creates an IdentityStore backed by db.
func NewGormIdentityStore(db *gorm.DB) *GormIdentityStore {
	return &GormIdentityStore{db: db}
}

type identityRow struct {
	ID   uuid.UUID  `gorm:"column:id"`
	Role types.Role `gorm:"column:role"`
}

// LookupIdentity implements IdentityStore.
func (s *GormIdentityStore) LookupIdentity(ctx context.Context, userID uuid.UUID) (Identity, error) {
	var row identityRow
	err := s.db.WithContext(ctx).
		Table("users").
		Select("id", "role").
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, err
	}
	return Identity{UserID: row.ID, Role: row.Role}, nil
}

// Authenticator verifies bearer tokens and loads the caller's identity.
type Authenticator struct {
	store     IdentityStore
	jwtSecret string
	logger    *slog.Logger
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(store IdentityStore, jwtSecret string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		store:     store,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Authenticate verifies token and resolves the identity it names.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := jwt.VerifyToken(token, a.jwtSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return Identity{}, apperrors.New("Token expired", http.StatusUnauthorized, apperrors.ErrUnauthorized, err)
		}
		return Identity{}, apperrors.New("Invalid token", http.StatusUnauthorized, apperrors.ErrUnauthorized, err)
	}

	identity, err := a.store.LookupIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return Identity{}, apperrors.New("User not found", http.StatusUnauthorized, apperrors.ErrUnauthorized, err)
		}
		return Identity{}, apperrors.FromStore(err)
	}

	return identity, nil
}

// AuthenticateUserID adapts Authenticate for callers that only need the user id.
func (a *Authenticator) AuthenticateUserID(ctx context.Context, token string) (uuid.UUID, error) {
	identity, err := a.Authenticate(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return identity.UserID, nil
}

// AuthenticateToken validates the bearer token and stores the identity in the context.
func (a *Authenticator) AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); ok {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.ErrorWithLog(a.logger, c, http.StatusUnauthorized, "No token provided", apperrors.Unauthorized("No token provided"))
			c.Abort()
			return
		}

		identity, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.FromError(a.logger, c, err)
			c.Abort()
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// AuthorizeRoles checks the authenticated identity against roles. Admins always pass.
func (a *Authenticator) AuthorizeRoles(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			response.ErrorWithLog(a.logger, c, http.StatusUnauthorized, "User not authenticated", apperrors.Unauthorized("User not authenticated"))
			c.Abort()
			return
		}

		if identity.IsAdmin() {
			c.Next()
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		response.ErrorWithLog(a.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", apperrors.Forbidden("Access denied: Insufficient permissions."))
		c.Abort()
	}
}

// RequireAuth is the handler chain for routes open to any signed-in user.
func (a *Authenticator) RequireAuth() []gin.HandlerFunc {
	return []gin.HandlerFunc{a.AuthenticateToken()}
}

// RequireRoles authenticates and then checks roles.
func (a *Authenticator) RequireRoles(roles ...types.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		a.AuthenticateToken(),
		a.AuthorizeRoles(roles...),
	}
}

// RequireAdmin restricts a route to administrators.
func (a *Authenticator) RequireAdmin() []gin.HandlerFunc {
	return a.RequireRoles(types.RoleAdmin)
}

// IdentityFromContext retrieves the authenticated identity from the Gin context.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok && identity.UserID != uuid.Nil
}

// SetIdentity stores identity on the request context.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// MustIdentity returns the identity or an Unauthorized error for handlers behind AuthenticateToken.
func MustIdentity(c *gin.Context) (Identity, error) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return Identity{}, apperrors.Unauthorized("User not authenticated")
	}
	return identity, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
