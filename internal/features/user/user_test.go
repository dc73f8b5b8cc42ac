package user

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/database/dbtest"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
	"github.com/mo-amir99/techboost-server-go/pkg/pagination"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
	"github.com/mo-amir99/techboost-server-go/pkg/validation"
)

func TestNewUser_Normalizes(t *testing.T) {
	u, err := newUser(CreateInput{
		Name:     "  Ada Lovelace ",
		Email:    " Ada@Example.COM ",
		Password: "correct-horse",
	}, bcrypt.MinCost)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, types.RoleUser, u.Role)
	assert.NotEqual(t, "correct-horse", u.Password)
	assert.True(t, u.ComparePassword("correct-horse"))
	assert.False(t, u.ComparePassword("wrong-horse"))
	assert.NotNil(t, u.CompletedLessons)
}

func TestNewUser_Rejects(t *testing.T) {
	cases := map[string]struct {
		input CreateInput
		want  error
	}{
		"blank name":     {CreateInput{Name: " ", Email: "a@b.co", Password: "12345678"}, ErrNameRequired},
		"long name":      {CreateInput{Name: strings.Repeat("x", 101), Email: "a@b.co", Password: "12345678"}, ErrNameLength},
		"bad email":      {CreateInput{Name: "A", Email: "not-an-email", Password: "12345678"}, ErrInvalidEmail},
		"short password": {CreateInput{Name: "A", Email: "a@b.co", Password: "1234567"}, ErrInvalidPassword},
		"unknown role":   {CreateInput{Name: "A", Email: "a@b.co", Password: "12345678", Role: "owner"}, ErrInvalidRole},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newUser(tc.input, bcrypt.MinCost)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProfileUpdates_OnlyProvidedFields(t *testing.T) {
	name := " Grace "
	updates, err := profileUpdates(UpdateInput{Name: &name}, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "Grace"}, updates)

	email := "GRACE@example.com"
	password := "new-password"
	updates, err = profileUpdates(UpdateInput{Email: &email, Password: &password}, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", updates["email"])
	hashed, ok := updates["password"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)))

	short := "short"
	_, err = profileUpdates(UpdateInput{Password: &short}, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestHashPassword_FallsBackOnInvalidCost(t *testing.T) {
	hashed, err := hashPassword("12345678", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestListFilters_SQL(t *testing.T) {
	stmt := ListFilters{Keyword: " Ada ", Role: types.RoleAdmin}.
		apply(dbtest.DryRun(t).Model(&User{})).
		Find(&[]User{}).Statement

	sql := dbtest.Normalize(stmt.SQL.String())
	assert.Contains(t, sql, "LOWER(name) LIKE $1 OR LOWER(email) LIKE $2")
	assert.Contains(t, sql, "role = $3")
	assert.Equal(t, []interface{}{"%ada%", "%ada%", types.RoleAdmin}, stmt.Vars)
}

func TestList_Paginates(t *testing.T) {
	stmt := pagination.Params{Page: 2, Limit: 10, Skip: 10}.
		Scope(dbtest.DryRun(t).Model(&User{}).Order("created_at DESC")).
		Find(&[]User{}).Statement

	sql := dbtest.Normalize(stmt.SQL.String())
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 10")
}

func TestToAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{ErrUserNotFound, http.StatusNotFound, "User not found"},
		{ErrEmailTaken, http.StatusBadRequest, "User already exists"},
		{ErrInvalidEmail, http.StatusBadRequest, "Invalid email format"},
		{ErrInvalidPassword, http.StatusBadRequest, "Password must be at least 8 characters long"},
	}
	for _, tc := range cases {
		var appErr *apperrors.AppError
		require.True(t, errors.As(ToAppError(tc.err), &appErr))
		assert.Equal(t, tc.status, appErr.StatusCode())
		assert.Equal(t, tc.msg, appErr.Message())
		assert.ErrorIs(t, appErr, tc.err)
	}

	assert.True(t, apperrors.Is(ToAppError(errors.New("boom")), apperrors.ErrInternal))
}

func newRouter(t *testing.T, identity *middleware.Identity) *gin.Engine {
	t.Helper()
	require.NoError(t, validation.Register())
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(request.Handler(logger.Discard()))

	var ac []gin.HandlerFunc
	if identity != nil {
		ac = []gin.HandlerFunc{func(c *gin.Context) { middleware.SetIdentity(c, *identity) }}
	}
	issue := func(User) (string, error) { return "token", nil }
	RegisterRoutes(router.Group(""), NewHandler(dbtest.DryRun(t), logger.Discard(), issue, bcrypt.MinCost), ac, ac)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RequiresIdentity(t *testing.T) {
	router := newRouter(t, nil)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/users/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPut, "/users/me", `{"name":"x"}`).Code)
}

func TestHandler_UpdateMeValidation(t *testing.T) {
	identity := middleware.Identity{UserID: uuid.New(), Role: types.RoleUser}
	router := newRouter(t, &identity)

	rec := serve(router, http.MethodPut, "/users/me", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nothing to update")

	rec = serve(router, http.MethodPut, "/users/me", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"must be a valid email"`)
}

func TestHandler_GetByIDRejectsBadID(t *testing.T) {
	identity := middleware.Identity{UserID: uuid.New(), Role: types.RoleAdmin}
	router := newRouter(t, &identity)

	rec := serve(router, http.MethodGet, "/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid userId")
}
