package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pageza/vinoteca/backend/internal/metrics"
	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	wineInfoKeyPrefix = "wine:info:"
	wineInfoTTL       = 24 * time.Hour

	// MessageInvalidWineInfo is sent when the model's JSON cannot be used.
	MessageInvalidWineInfo = "Invalid JSON from model"
)

const wineInfoSchemaJSON = `{
	"type": "object",
	"required": ["storage", "serving", "pairings", "tasting_notes"],
	"properties": {
		"storage": {
			"type": "object",
			"properties": {
				"temperature_celsius": {"type": ["string", "number"]},
				"humidity_percent":    {"type": ["string", "number"]},
				"position":            {"type": "string"},
				"ageing_potential":    {"type": "string"}
			}
		},
		"serving": {
			"type": "object",
			"properties": {
				"drink_temp_celsius":  {"type": ["string", "number"]},
				"needs_decanting":     {"type": ["string", "boolean"]},
				"decant_time_minutes": {"type": ["string", "number"]}
			}
		},
		"pairings":      {"type": "array", "items": {"type": "string"}},
		"tasting_notes": {"type": "string"}
	}
}`

var wineInfoSchema = mustSchema(wineInfoSchemaJSON)

type WineInfoConfig struct {
	MaxTokens     int
	StreamTimeout time.Duration
}

// WineInfoService streams storage, serving and pairing advice for a named wine. Complete
// answers are cached in redis when a client is configured.
type WineInfoService struct {
	llm   LLMClient
	cache *redis.Client
	cfg   WineInfoConfig
	log   *zap.Logger
}

func NewWineInfoService(llm LLMClient, cache *redis.Client, cfg WineInfoConfig, log *zap.Logger) *WineInfoService {
	return &WineInfoService{llm: llm, cache: cache, cfg: cfg, log: log}
}

// Describe emits one partial event per model delta followed by either a wineInfo event
// or an error event. A cache hit emits only the wineInfo event.
func (s *WineInfoService) Describe(ctx context.Context, wineName string, emit Emitter) error {
	key := wineInfoKey(wineName)
	if cached := s.cached(ctx, key); cached != nil {
		return emit(types.WineInfoEvent(cached))
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.cfg.StreamTimeout)
	defer cancel()

	stream, err := s.llm.Stream(streamCtx, CompletionRequest{
		SystemPrompt: BuildWineInfoPrompt(wineName),
		UserPrompt:   "Tell me about " + wineName,
		MaxTokens:    s.cfg.MaxTokens,
		JSON:         true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Error("failed to start wine info stream", zap.String("wine", wineName), zap.Error(err))
		_ = emit(types.ErrorEvent(strings.TrimSpace(MarkerModelFailed)))
		return err
	}
	defer stream.Close()

	var full strings.Builder
	for {
		piece, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A cut-off answer is judged like any other; it will usually fail validation.
			s.log.Warn("wine info stream ended early", zap.String("wine", wineName), zap.Error(err))
			break
		}
		full.WriteString(piece)
		if err := emit(types.PartialEvent(piece)); err != nil {
			return err
		}
	}

	raw := []byte(strings.TrimSpace(full.String()))
	if err := validateWineInfo(raw); err != nil {
		s.log.Warn("model returned unusable wine info", zap.String("wine", wineName), zap.Error(err))
		return emit(types.ErrorEvent(MessageInvalidWineInfo))
	}

	s.store(ctx, key, raw)
	return emit(types.WineInfoEvent(raw))
}

func validateWineInfo(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty response")
	}
	return validateJSON(wineInfoSchema, raw)
}

func (s *WineInfoService) cached(ctx context.Context, key string) []byte {
	if s.cache == nil {
		return nil
	}
	val, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheTotal.WithLabelValues("wine_info", "miss").Inc()
		return nil
	case err != nil:
		metrics.CacheTotal.WithLabelValues("wine_info", "error").Inc()
		s.log.Warn("wine info cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	metrics.CacheTotal.WithLabelValues("wine_info", "hit").Inc()
	return val
}

func (s *WineInfoService) store(ctx context.Context, key string, raw []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), key, raw, wineInfoTTL).Err(); err != nil {
		s.log.Warn("wine info cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func wineInfoKey(wineName string) string {
	return wineInfoKeyPrefix + strings.Join(strings.Fields(strings.ToLower(wineName)), " ")
}
