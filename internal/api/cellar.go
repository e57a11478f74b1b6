package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pageza/vinoteca/backend/internal/types"
)

type CellarHandler struct {
	cellar CellarManager
}

func NewCellarHandler(cellar CellarManager) *CellarHandler {
	return &CellarHandler{cellar: cellar}
}

func (h *CellarHandler) RegisterRoutes(router *gin.RouterGroup) {
	cellar := router.Group("/cellar")
	{
		cellar.GET("/:username", h.List)
		cellar.POST("", h.Add)
		cellar.DELETE("/:username/:wine_id", h.Remove)
	}
}

func (h *CellarHandler) List(c *gin.Context) {
	wines, err := h.cellar.List(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "Failed to fetch cellar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cellar": wines})
}

func (h *CellarHandler) Add(c *gin.Context) {
	var req types.AddToCellarRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.cellar.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to add wine to cellar")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *CellarHandler) Remove(c *gin.Context) {
	wineID, ok := pathID(c, "wine_id")
	if !ok {
		return
	}
	if err := h.cellar.Remove(c.Request.Context(), c.Param("username"), wineID); err != nil {
		respondError(c, err, "Failed to remove wine from cellar")
		return
	}
	c.Status(http.StatusNoContent)
}
