package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitterboard/internal/app"
	"sitterboard/internal/common"
	"sitterboard/internal/domain/user"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("k", 3, time.Minute), "attempt %d", i)
	}
	assert.False(t, limiter.Allow("k", 3, time.Minute))
	assert.True(t, limiter.Allow("other", 3, time.Minute))

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("k", 3, time.Minute))
	assert.Len(t, limiter.buckets, 1)
}

func TestNilRedisLimiterAllows(t *testing.T) {
	limiter := NewRedisLimiter(nil, zerolog.Nop())
	assert.Nil(t, limiter)
	assert.True(t, limiter.Allow("k", 1, time.Minute))
}

type staticResolver struct {
	caller user.Caller
	err    error
}

func (r staticResolver) Resolve(context.Context, string) (user.Caller, error) {
	return r.caller, r.err
}

func serve(t *testing.T, resolver Resolver, header string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(resolver)}, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/x", chain...)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	parent := staticResolver{caller: user.Caller{ID: "p1", Role: user.RoleParent}}
	profileless := staticResolver{caller: user.Caller{ID: "x1"}}
	failing := staticResolver{err: common.NewError(common.CodeUnauthorized, "invalid token", nil)}

	assert.Equal(t, http.StatusUnauthorized, serve(t, parent, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, parent, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, failing, "Bearer abc").Code)
	assert.Equal(t, http.StatusNoContent, serve(t, parent, "Bearer abc").Code)
	assert.Equal(t, http.StatusNoContent, serve(t, parent, "bearer abc", RequireRole(user.RoleParent)).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, parent, "Bearer abc", RequireRole(user.RoleStudent)).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, profileless, "Bearer abc", RequireRole(user.RoleParent)).Code)
}

func TestRedisLimiterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRedisLimiter(client, zerolog.Nop())

	key := app.ApplyThrottleKey(common.NewUUID(), common.NewUUID())
	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow(key, 3, time.Minute), "attempt %d", i)
	}
	assert.False(t, limiter.Allow(key, 3, time.Minute))
	assert.True(t, limiter.Allow(app.ApplyThrottleKey(common.NewUUID(), common.NewUUID()), 3, time.Minute))

	stored := redisKeyPrefix + key
	require.True(t, mr.Exists(stored))
	assert.Equal(t, "4", mustGet(t, mr, stored))
	ttl := mr.TTL(stored)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl %s", ttl)

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, limiter.Allow(key, 3, time.Minute))
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRedisLimiter(client, zerolog.Nop())

	require.True(t, limiter.Allow("k", 1, time.Minute))
	require.False(t, limiter.Allow("k", 1, time.Minute))
	mr.Close()
	assert.True(t, limiter.Allow("k", 1, time.Minute))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	value, err := mr.Get(key)
	require.NoError(t, err)
	return value
}
