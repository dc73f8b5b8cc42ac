package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/techboost-server-go/internal/utils/jwt"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

const secret = "middleware-secret"

type fakeStore struct {
	users map[uuid.UUID]types.Role
	err   error
}

func (f fakeStore) LookupIdentity(_ context.Context, id uuid.UUID) (Identity, error) {
	if f.err != nil {
		return Identity{}, f.err
	}
	role, ok := f.users[id]
	if !ok {
		return Identity{}, ErrUnknownUser
	}
	return Identity{UserID: id, Role: role}, nil
}

func router(auth *Authenticator, chain []gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(chain, func(c *gin.Context) {
		identity, _ := IdentityFromContext(c)
		c.String(http.StatusOK, identity.UserID.String())
	})
	r.GET("/x", handlers...)
	return r
}

func call(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, id uuid.UUID, expiry time.Duration) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(id, types.RoleUser, secret, expiry)
	require.NoError(t, err)
	return tok
}

func TestAuthenticateToken(t *testing.T) {
	student := uuid.New()
	auth := NewAuthenticator(fakeStore{users: map[uuid.UUID]types.Role{student: types.RoleUser}}, secret, logger.Discard())
	r := router(auth, auth.RequireAuth())

	rec := call(r, token(t, student, time.Hour))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, student.String(), rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "garbage").Code)

	expired := call(r, token(t, student, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, expired.Code)
	assert.Contains(t, expired.Body.String(), "Token expired")

	deleted := call(r, token(t, uuid.New(), time.Hour))
	assert.Equal(t, http.StatusUnauthorized, deleted.Code)
	assert.Contains(t, deleted.Body.String(), "User not found")
}

func TestAuthenticateToken_StoreOutageIsTransient(t *testing.T) {
	auth := NewAuthenticator(fakeStore{err: context.DeadlineExceeded}, secret, logger.Discard())
	rec := call(router(auth, auth.RequireAuth()), token(t, uuid.New(), time.Hour))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireAdmin_UsesStoredRole(t *testing.T) {
	admin, student := uuid.New(), uuid.New()
	auth := NewAuthenticator(fakeStore{users: map[uuid.UUID]types.Role{
		admin:   types.RoleAdmin,
		student: types.RoleUser,
	}}, secret, logger.Discard())
	r := router(auth, auth.RequireAdmin())

	// The token claims "user" for both; the stored role decides.
	assert.Equal(t, http.StatusOK, call(r, token(t, admin, time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, call(r, token(t, student, time.Hour)).Code)
}

func TestAuthenticateUserID(t *testing.T) {
	id := uuid.New()
	auth := NewAuthenticator(fakeStore{users: map[uuid.UUID]types.Role{id: types.RoleUser}}, secret, logger.Discard())

	got, err := auth.AuthenticateUserID(context.Background(), token(t, id, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = auth.AuthenticateUserID(context.Background(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestMustIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := MustIdentity(c)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode())

	c.Set(identityKey, Identity{UserID: uuid.New(), Role: types.RoleUser})
	identity, err := MustIdentity(c)
	require.NoError(t, err)
	assert.False(t, identity.IsAdmin())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
}
