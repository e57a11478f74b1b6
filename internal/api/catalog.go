package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageza/vinoteca/backend/internal/service"
	"github.com/pageza/vinoteca/backend/internal/types"
)

type CatalogHandler struct {
	catalog CatalogReader
}

func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	wines := router.Group("/wines")
	{
		wines.GET("", h.List)
		wines.GET("/search", h.Search)
		wines.GET("/:id", h.Get)
		wines.GET("/:id/food-pairings", h.FoodPairings)
	}
	router.GET("/vineyards/:id", h.Vineyard)
}

// List returns the top rated wines.
func (h *CatalogHandler) List(c *gin.Context) {
	wines, err := h.catalog.TopRated(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch wines")
		return
	}
	c.JSON(http.StatusOK, gin.H{"wines": wines})
}

// Search takes either ?filter=<key>&value=<v> or one query parameter per filter key.
func (h *CatalogHandler) Search(c *gin.Context) {
	var (
		wines []types.EnrichedWine
		err   error
	)

	if key := c.Query("filter"); key != "" {
		wines, err = h.catalog.SearchByField(c.Request.Context(), key, c.Query("value"))
	} else {
		filters := make(map[string]string)
		for _, key := range service.SearchKeys {
			if v := c.Query(key); v != "" {
				filters[key] = v
			}
		}
		wines, err = h.catalog.Search(c.Request.Context(), filters)
	}
	if err != nil {
		respondError(c, err, "Failed to search wines")
		return
	}
	c.JSON(http.StatusOK, gin.H{"wines": wines})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	wine, err := h.catalog.GetWine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch wine")
		return
	}
	c.JSON(http.StatusOK, wine)
}

func (h *CatalogHandler) FoodPairings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pairings, err := h.catalog.FoodPairings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch food pairings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairings": pairings})
}

func (h *CatalogHandler) Vineyard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	vineyard, err := h.catalog.Vineyard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch vineyard")
		return
	}
	c.JSON(http.StatusOK, vineyard)
}

// pathID parses a positive integer path parameter, writing a 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
