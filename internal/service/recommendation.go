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
	"go.uber.org/zap"
)

// Markers written into the stream when a stage fails.
const (
	MarkerProbeFailed = "\n[Error fetching food pairings]\n"
	MarkerWinesFailed = "\n[Error fetching wines]\n"
	MarkerModelFailed = "\n[AI service unavailable]\n"
	MarkerInternal    = "\n[AI or DB error]\n"
)

// Emitter writes one event to the client. An error means the client can no longer be
// reached and the pipeline stops.
type Emitter func(types.StreamEvent) error

// WineFinder is the part of the catalog the recommendation pipeline uses.
type WineFinder interface {
	ProbeFoodPairing(ctx context.Context, term string) ([]types.EnrichedWine, error)
	Refine(ctx context.Context, f types.ModelFilter) ([]types.EnrichedWine, error)
}

var _ WineFinder = (*CatalogService)(nil)

type RecommendationConfig struct {
	MaxTokens     int
	StreamTimeout time.Duration
}

// RecommendationService turns one free-text prompt into the ordered event stream:
// probe batch, text deltas, complete response, refined batch.
type RecommendationService struct {
	catalog WineFinder
	llm     LLMClient
	audit   AuditRecorder
	cfg     RecommendationConfig
	log     *zap.Logger
}

func NewRecommendationService(catalog WineFinder, llm LLMClient, audit AuditRecorder, cfg RecommendationConfig, log *zap.Logger) *RecommendationService {
	return &RecommendationService{catalog: catalog, llm: llm, audit: audit, cfg: cfg, log: log}
}

// Recommend runs the pipeline, writing every event through emit. Stage failures are
// reported to the client as marker events; the returned error is for logging only.
func (s *RecommendationService) Recommend(ctx context.Context, req types.RecommendationRequest, emit Emitter) (err error) {
	log := s.log.With(zap.String("username", req.Username))

	defer func() {
		if r := recover(); r != nil {
			log.Error("recommendation pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
			_ = emit(types.TextEvent(MarkerInternal))
			err = fmt.Errorf("recommendation pipeline panicked: %v", r)
		}
	}()

	// 1. audit
	start := time.Now()
	if err := s.audit.RecordPrompt(ctx, req.Prompt, req.Username); err != nil {
		metrics.DegradedTotal.WithLabelValues("audit_prompt").Inc()
		log.Warn("failed to record search prompt", zap.Error(err))
	}
	observeStage("audit_prompt", start)

	// 2. keyword probe
	start = time.Now()
	probe, err := s.catalog.ProbeFoodPairing(ctx, req.Prompt)
	observeStage("probe", start)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues("probe").Inc()
		log.Warn("food pairing probe failed", zap.Error(err))
		probe = nil
		if err := emit(types.WinesEvent(nil)); err != nil {
			return err
		}
		if err := emit(types.TextEvent(MarkerProbeFailed)); err != nil {
			return err
		}
	} else if err := emit(types.WinesEvent(probe)); err != nil {
		return err
	}

	// 3. model streaming
	start = time.Now()
	fullText, scanned, err := s.streamModel(ctx, req.Prompt, probe, emit)
	observeStage("model", start)
	if err != nil {
		return err
	}

	// 4. audit completion
	start = time.Now()
	if err := s.audit.RecordResponse(ctx, req.Prompt, req.Username, fullText); err != nil {
		metrics.DegradedTotal.WithLabelValues("audit_response").Inc()
		log.Warn("failed to record ai response", zap.Error(err))
	}
	observeStage("audit_response", start)
	if err := emit(types.CompleteResponseEvent(fullText)); err != nil {
		return err
	}

	// 5. filter extraction
	filter, outcome := ExtractFilter(fullText, scanned)
	metrics.FilterExtractionsTotal.WithLabelValues(outcome).Inc()
	log.Debug("model filter extracted", zap.String("outcome", outcome), zap.Any("filter", filter))

	// 6. refined query
	start = time.Now()
	refined, err := s.catalog.Refine(ctx, filter)
	observeStage("refine", start)
	if err != nil {
		log.Error("refined wine query failed", zap.Error(err))
		_ = emit(types.ErrorEvent(MarkerWinesFailed))
		return err
	}

	// 7. final emission
	return emit(types.WinesEvent(refined))
}

// streamModel relays every delta as a text event and returns the accumulated text with
// the brace span seen while streaming. Reaching the stream timeout ends the turn early
// without an error.
func (s *RecommendationService) streamModel(ctx context.Context, prompt string, probe []types.EnrichedWine, emit Emitter) (string, string, error) {
	streamCtx, cancel := context.WithTimeout(ctx, s.cfg.StreamTimeout)
	defer cancel()

	stream, err := s.llm.Stream(streamCtx, CompletionRequest{
		SystemPrompt: BuildSommelierPrompt(probe),
		UserPrompt:   prompt,
		MaxTokens:    s.cfg.MaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		s.log.Error("failed to start model stream", zap.Error(err))
		_ = emit(types.ErrorEvent(MarkerModelFailed))
		return "", "", err
	}
	defer stream.Close()

	var full strings.Builder
	scanner := NewBraceScanner()
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
				metrics.DegradedTotal.WithLabelValues("model_timeout").Inc()
				s.log.Warn("model stream timed out, using partial response",
					zap.Duration("timeout", s.cfg.StreamTimeout), zap.Int("chars", full.Len()))
				break
			}
			s.log.Error("model stream failed", zap.Error(err))
			_ = emit(types.ErrorEvent(MarkerModelFailed))
			return "", "", err
		}

		full.WriteString(delta)
		scanner.Feed(delta)
		if err := emit(types.TextEvent(delta)); err != nil {
			return "", "", err
		}
	}

	return full.String(), scanner.Candidate(), nil
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
