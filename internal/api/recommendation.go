package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pageza/vinoteca/backend/internal/logger"
	"github.com/pageza/vinoteca/backend/internal/types"
	"go.uber.org/zap"
)

type RecommendationHandler struct {
	recommender Recommender
}

func NewRecommendationHandler(recommender Recommender) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender}
}

func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	router.POST("/ai-search", limit, h.Search)
}

// Search streams the recommendation for a free-text prompt as NDJSON.
func (h *RecommendationHandler) Search(c *gin.Context) {
	var req types.RecommendationRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Username = strings.TrimSpace(req.Username)
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	log := logger.FromContext(c.Request.Context())
	emit := startStream(c)
	if err := h.recommender.Recommend(c.Request.Context(), req, emit); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("client closed recommendation stream")
			return
		}
		log.Warn("recommendation ended with error", zap.Error(err))
	}
}

type WineInfoHandler struct {
	describer WineDescriber
}

func NewWineInfoHandler(describer WineDescriber) *WineInfoHandler {
	return &WineInfoHandler{describer: describer}
}

func (h *WineInfoHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	router.POST("/ai-wine-info", limit, h.Describe)
}

// Describe streams storage, serving and pairing advice for a wine as NDJSON.
func (h *WineInfoHandler) Describe(c *gin.Context) {
	var req types.WineInfoRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.WineName)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wineName is required"})
		return
	}

	emit := startStream(c)
	if err := h.describer.Describe(c.Request.Context(), name, emit); err != nil && !errors.Is(err, context.Canceled) {
		logger.FromContext(c.Request.Context()).Warn("wine info ended with error", zap.String("wine", name), zap.Error(err))
	}
}
