package middleware

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(RateLimitConfig{RPS: 1, Burst: 2, IPRPS: 10, IPBurst: 10})
	fixed := time.Now()
	limiter.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	a := map[string]string{"x-api-key": "a"}
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "", a).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "", a).Code)
	rec := doRequest(r, http.MethodGet, "/x", "", a)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Another key has its own bucket.
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "", map[string]string{"x-api-key": "b"}).Code)

	// Tokens refill with time.
	fixed = fixed.Add(time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "", a).Code)
}

func TestRateLimiterRotatingKeysShareAddressBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(RateLimitConfig{RPS: 1, Burst: 2, IPRPS: 1, IPBurst: 3})
	fixed := time.Now()
	limiter.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	admitted := 0
	for i := 0; i < 10; i++ {
		key := map[string]string{"x-api-key": "made-up-" + strconv.Itoa(i)}
		if doRequest(r, http.MethodGet, "/x", "", key).Code == http.StatusOK {
			admitted++
		}
	}
	assert.Equal(t, 3, admitted)
	// One address bucket plus one bucket per admitted key.
	assert.Len(t, limiter.visitors, 4)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("key:a"))
	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.allow("key:b"))
	_, kept := limiter.visitors["key:a"]
	assert.False(t, kept)
}
