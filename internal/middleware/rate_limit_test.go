package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOwnerRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewOwnerRateLimiter(1, 2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("owner-1"))
	assert.True(t, l.Allow("owner-1"))
	assert.False(t, l.Allow("owner-1"), "burst exhausted")
	assert.True(t, l.Allow("owner-2"), "buckets are per key")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("owner-1"), "refilled after one second")
}

func TestOwnerRateLimiter_DropsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewOwnerRateLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return now }
	l.lastCleanup = now

	l.Allow("owner-1")
	l.Allow("owner-2")
	assert.Len(t, l.visitors, 2)

	now = now.Add(5 * time.Minute)
	l.Allow("owner-3")
	assert.Len(t, l.visitors, 1)
}

func TestOwnerRateLimiter_Middleware(t *testing.T) {
	l := NewOwnerRateLimiter(0.001, 1, time.Minute)

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		c.Set(OwnerIDKey, c.GetHeader("X-Owner"))
		c.Next()
	}, l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(owner string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("X-Owner", owner)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("owner-1"))
	assert.Equal(t, http.StatusTooManyRequests, do("owner-1"))
	assert.Equal(t, http.StatusOK, do("owner-2"))
}
