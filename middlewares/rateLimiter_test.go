package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/middlewares"
	"github.com/mmdatafocus/books_quotation/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(limit int64, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.NewRateLimiter(config.GetRedisDB, limit, window).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func ping(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	mr := testutil.SetupTestRedis(t)
	r := limitedRouter(2, time.Minute)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1:1234").Code)
	w := ping(r, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")

	// counted per client ip
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.2:1234").Code)

	// a new window starts once the key expires
	assert.Positive(t, mr.TTL("RateLimit:10.0.0.1"))
	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1:1234").Code)
}

func TestRateLimiter_PassesWithoutRedis(t *testing.T) {
	config.SetRedisDB(nil)
	r := limitedRouter(1, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1:1234").Code)
	}
}
