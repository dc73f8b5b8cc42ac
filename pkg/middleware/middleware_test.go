package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/techboost-server-go/pkg/cache"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(cache.NewMemoryCache(), logger.Discard(), 2, time.Minute).Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/", nil).Code)

	second := do(router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := do(router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
	assert.Contains(t, third.Body.String(), "too_many_requests")
}

type brokenCache struct{ cache.Client }

func (brokenCache) IncrementWindow(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(brokenCache{}, logger.Discard(), 1, time.Minute).Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/", nil).Code)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(50 * time.Millisecond))

	var deadline time.Time
	var ok bool
	router.GET("/", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	do(router, http.MethodGet, "/", nil)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), deadline, time.Second)
}

func TestRequestID_GeneratesAndReuses(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var fromContext string
	router.GET("/", func(c *gin.Context) {
		fromContext = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := do(router, http.MethodGet, "/", nil)
	generated := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, fromContext)

	incoming := uuid.NewString()
	rec = do(router, http.MethodGet, "/", http.Header{RequestIDHeader: {incoming}})
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	rec = do(router, http.MethodGet, "/", http.Header{RequestIDHeader: {"<script>"}})
	assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(logger.Discard()))
	router.GET("/", func(c *gin.Context) { panic("nil map") })

	rec := do(router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.NotContains(t, rec.Body.String(), "nil map")
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.techboost.dev"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := do(router, http.MethodGet, "/", http.Header{"Origin": {"https://app.techboost.dev"}})
	assert.Equal(t, "https://app.techboost.dev", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(router, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(router, http.MethodOptions, "/", http.Header{"Origin": {"https://app.techboost.dev"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestSizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimit(8))
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lessonId":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
