package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/middleware"
	"github.com/pageza/vinoteca/backend/internal/ndjson"
	"github.com/pageza/vinoteca/backend/internal/service"
	"github.com/pageza/vinoteca/backend/internal/testhelpers"
	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptedLLM answers every request with the same deltas.
type scriptedLLM struct {
	deltas []string
}

func (l *scriptedLLM) Stream(context.Context, service.CompletionRequest) (service.TextStream, error) {
	return &scriptedStream{deltas: l.deltas}, nil
}

type scriptedStream struct {
	deltas []string
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.deltas) == 0 {
		return "", io.EOF
	}
	next := s.deltas[0]
	s.deltas = s.deltas[1:]
	return next, nil
}

func (s *scriptedStream) Close() error { return nil }

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupTestRouter(t *testing.T, llm service.LLMClient, limiter *middleware.RateLimiter) *testEnv {
	t.Helper()

	db := testhelpers.NewSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)

	log := zap.NewNop()
	catalog := service.NewCatalogService(database.NewCatalogStore(db), log)
	recommender := service.NewRecommendationService(catalog, llm, service.NewAuditLog(db),
		service.RecommendationConfig{MaxTokens: 256, StreamTimeout: 5 * time.Second}, log)
	wineInfo := service.NewWineInfoService(llm, nil,
		service.WineInfoConfig{MaxTokens: 300, StreamTimeout: 5 * time.Second}, log)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		DB:            db,
		Catalog:       catalog,
		Recommender:   recommender,
		WineInfo:      wineInfo,
		Cellar:        service.NewCellarService(db),
		AIRateLimiter: limiter,
	})
	return &testEnv{router: router, db: db}
}

func performRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func readEvents(t *testing.T, body []byte) []types.StreamEvent {
	t.Helper()
	r := ndjson.NewReader(bytes.NewReader(body), zap.NewNop())
	var events []types.StreamEvent
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}
