package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pageza/vinoteca/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	env := setupTestRouter(t, &scriptedLLM{}, nil)

	w := performRequest(env.router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = performRequest(env.router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAIRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := middleware.NewAIRateLimiter(client, 1, time.Minute)
	env := setupTestRouter(t, &scriptedLLM{deltas: []string{"ok"}}, limiter)

	body := map[string]string{"prompt": "pasta", "username": "sommelier"}
	first := performRequest(env.router, http.MethodPost, "/api/v1/ai-search", body)
	require.Equal(t, http.StatusOK, first.Code)
	// the prompt was still readable after the limiter peeked at the body
	assert.Len(t, readEvents(t, first.Body.Bytes()), 4)

	second := performRequest(env.router, http.MethodPost, "/api/v1/ai-search", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	w := performRequest(env.router, http.MethodGet, "/api/v1/rate-limits/ai?username=sommelier", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]any
	decodeJSON(t, w, &status)
	assert.EqualValues(t, 1, status["limit"])
	assert.EqualValues(t, 0, status["remaining"])

	// catalog reads are not limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, performRequest(env.router, http.MethodGet, "/api/v1/wines", nil).Code)
	}
}

func TestRateLimitRoutesAbsentWithoutRedis(t *testing.T) {
	env := setupTestRouter(t, &scriptedLLM{}, nil)
	w := performRequest(env.router, http.MethodGet, "/api/v1/rate-limits/ai", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
