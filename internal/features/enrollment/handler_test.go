package enrollment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(f *fixture, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(request.Handler(logger.Discard()))

	auth := []gin.HandlerFunc{func(c *gin.Context) {
		middleware.SetIdentity(c, middleware.Identity{UserID: userID, Role: types.RoleUser})
	}}
	RegisterRoutes(router.Group(""), NewHandler(f.service, logger.Discard()), auth)
	return router
}

func post(t *testing.T, router *gin.Engine, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestHandler_EnrollFlow(t *testing.T) {
	f := newFixture()
	courseID, lessons := f.catalog.addCourse(2)
	router := newRouter(f, uuid.New())

	code, env := post(t, router, "/users/enroll/"+courseID.String(), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Successfully enrolled in course", env.Message)

	code, env = post(t, router, "/users/enroll/"+courseID.String(), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Already enrolled in this course", env.Message)
	assert.False(t, env.Success)

	code, env = post(t, router, "/users/enroll/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Course not found", env.Message)

	code, env = post(t, router, "/users/complete-lesson", `{"lessonId":"`+lessons[0].String()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Lesson marked as completed", env.Message)

	var result CompletionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 50, result.Progress)
	assert.True(t, result.Changed)
}

func TestHandler_CompleteLessonValidation(t *testing.T) {
	f := newFixture()
	router := newRouter(f, uuid.New())

	code, env := post(t, router, "/users/complete-lesson", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LessonId is required", env.Message)

	code, env = post(t, router, "/users/complete-lesson", `{"lessonId":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid lessonId", env.Message)

	code, env = post(t, router, "/users/complete-lesson", `{"lessonId":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Lesson not found", env.Message)

	code, _ = post(t, router, "/users/complete-lesson", `{"lessonId":`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_CompleteLessonNotEnrolled(t *testing.T) {
	f := newFixture()
	_, lessons := f.catalog.addCourse(1)
	router := newRouter(f, uuid.New())

	code, env := post(t, router, "/users/complete-lesson", `{"lessonId":"`+lessons[0].String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You are not enrolled in this course", env.Message)
}
