package api

import (
	"context"

	"github.com/pageza/vinoteca/backend/internal/middleware"
	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/service"
	"github.com/pageza/vinoteca/backend/internal/types"
	"gorm.io/gorm"
)

// Recommender streams a recommendation for one prompt.
type Recommender interface {
	Recommend(ctx context.Context, req types.RecommendationRequest, emit service.Emitter) error
}

// WineDescriber streams storage and serving advice for one wine.
type WineDescriber interface {
	Describe(ctx context.Context, wineName string, emit service.Emitter) error
}

// CatalogReader is the read side of the wine catalog.
type CatalogReader interface {
	TopRated(ctx context.Context) ([]types.EnrichedWine, error)
	Search(ctx context.Context, filters map[string]string) ([]types.EnrichedWine, error)
	SearchByField(ctx context.Context, key, value string) ([]types.EnrichedWine, error)
	GetWine(ctx context.Context, wineID int64) (*types.EnrichedWine, error)
	FoodPairings(ctx context.Context, wineID int64) ([]string, error)
	Vineyard(ctx context.Context, vineyardID int64) (*model.Vineyard, error)
}

// CellarManager manages users' saved wines.
type CellarManager interface {
	List(ctx context.Context, username string) ([]types.CellarWine, error)
	Add(ctx context.Context, req types.AddToCellarRequest) (*model.CellarEntry, error)
	Remove(ctx context.Context, username string, wineID int64) error
}

var (
	_ Recommender   = (*service.RecommendationService)(nil)
	_ WineDescriber = (*service.WineInfoService)(nil)
	_ CatalogReader = (*service.CatalogService)(nil)
	_ CellarManager = (*service.CellarService)(nil)
)

// Dependencies are everything the routes need. AIRateLimiter may be nil.
type Dependencies struct {
	DB            *gorm.DB
	Catalog       CatalogReader
	Recommender   Recommender
	WineInfo      WineDescriber
	Cellar        CellarManager
	AIRateLimiter *middleware.RateLimiter
}
