package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pageza/vinoteca/backend/internal/metrics"
	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageSize bounds the default catalog view.
	DefaultPageSize = 10
	// SearchPageSize bounds every filtered search.
	SearchPageSize = 20

	enrichConcurrency = 8
)

// CatalogStore is the data access the catalog needs. Implementations return
// types.ErrNotFound for missing rows.
type CatalogStore interface {
	FindWines(ctx context.Context, q types.WineQuery) ([]model.Wine, error)
	Wine(ctx context.Context, wineID int64) (*model.Wine, error)
	FoodPairings(ctx context.Context, wineID int64) ([]string, error)
	Vineyard(ctx context.Context, vineyardID int64) (*model.Vineyard, error)
}

// SearchKeys are the filter keys accepted by Search and SearchByField.
var SearchKeys = []string{"name", "year", "food", "vineyard", "appelation", "appellation", "region", "country", "grape", "classification", "wine_type"}

// CatalogService runs catalog lookups and enriches every returned wine with its food
// pairings and vineyard.
type CatalogService struct {
	store CatalogStore
	log   *zap.Logger
}

func NewCatalogService(store CatalogStore, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, log: log}
}

// TopRated returns the default catalog view.
func (s *CatalogService) TopRated(ctx context.Context) ([]types.EnrichedWine, error) {
	return s.find(ctx, types.WineQuery{Limit: DefaultPageSize})
}

// Search applies every recognized key of filters. Unknown keys are ignored.
func (s *CatalogService) Search(ctx context.Context, filters map[string]string) ([]types.EnrichedWine, error) {
	q := types.WineQuery{Limit: SearchPageSize}
	for key, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "name":
			q.Name = value
		case "grape":
			q.Grape = value
		case "classification":
			q.Classification = value
		case "wine_type":
			q.WineType = value
		case "food":
			q.Food = value
		case "vineyard":
			q.Vineyard = value
		case "appelation", "appellation":
			q.Appellation = value
		case "region":
			q.Region = value
		case "country":
			q.Country = value
		case "year":
			year, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: year must be a number", ErrInvalidFilter)
			}
			q.Year = &year
		}
	}
	return s.find(ctx, q)
}

// SearchByField is the single key/value form used by the advanced search.
func (s *CatalogService) SearchByField(ctx context.Context, key, value string) ([]types.EnrichedWine, error) {
	if !slices.Contains(SearchKeys, key) {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidFilter, key)
	}
	return s.Search(ctx, map[string]string{key: value})
}

// Refine runs the query built from a model filter. An empty filter is the plain top
// rated search.
func (s *CatalogService) Refine(ctx context.Context, f types.ModelFilter) ([]types.EnrichedWine, error) {
	return s.find(ctx, types.WineQuery{
		Name:           f.Name,
		Grape:          f.Grape,
		Classification: f.Classification,
		WineType:       f.WineType,
		Region:         f.Region,
		Country:        f.Country,
		Appellation:    f.Appellation,
		Food:           f.Food,
		Year:           f.Year.Ptr(),
		Limit:          SearchPageSize,
	})
}

// ProbeFoodPairing treats term as a food pairing keyword. A blank term matches nothing.
func (s *CatalogService) ProbeFoodPairing(ctx context.Context, term string) ([]types.EnrichedWine, error) {
	if strings.TrimSpace(term) == "" {
		return []types.EnrichedWine{}, nil
	}
	return s.find(ctx, types.WineQuery{Food: term, Limit: SearchPageSize})
}

// GetWine returns one wine, rated or not, enriched the same way as search results.
func (s *CatalogService) GetWine(ctx context.Context, wineID int64) (*types.EnrichedWine, error) {
	wine, err := s.store.Wine(ctx, wineID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, ErrWineNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogQuery, err)
	}
	enriched := s.enrichOne(ctx, *wine)
	return &enriched, nil
}

func (s *CatalogService) FoodPairings(ctx context.Context, wineID int64) ([]string, error) {
	pairings, err := s.store.FoodPairings(ctx, wineID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogQuery, err)
	}
	return pairings, nil
}

func (s *CatalogService) Vineyard(ctx context.Context, vineyardID int64) (*model.Vineyard, error) {
	vineyard, err := s.store.Vineyard(ctx, vineyardID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, ErrVineyardNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogQuery, err)
	}
	return vineyard, nil
}

func (s *CatalogService) find(ctx context.Context, q types.WineQuery) ([]types.EnrichedWine, error) {
	wines, err := s.store.FindWines(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogQuery, err)
	}
	return s.enrich(ctx, wines), nil
}

// enrich keeps input order. A failed lookup only affects its own record.
func (s *CatalogService) enrich(ctx context.Context, wines []model.Wine) []types.EnrichedWine {
	out := make([]types.EnrichedWine, len(wines))

	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i, wine := range wines {
		g.Go(func() error {
			out[i] = s.enrichOne(ctx, wine)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *CatalogService) enrichOne(ctx context.Context, wine model.Wine) types.EnrichedWine {
	enriched := types.EnrichedWine{Wine: wine, FoodPairings: []string{}}

	pairings, err := s.store.FoodPairings(ctx, wine.ID)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues("enrich_food_pairings").Inc()
		s.log.Warn("failed to load food pairings", zap.Int64("wine_id", wine.ID), zap.Error(err))
	} else if pairings != nil {
		enriched.FoodPairings = pairings
	}

	if wine.VineyardID == nil {
		return enriched
	}
	vineyard, err := s.store.Vineyard(ctx, *wine.VineyardID)
	switch {
	case errors.Is(err, types.ErrNotFound):
		s.log.Debug("wine references missing vineyard", zap.Int64("wine_id", wine.ID), zap.Int64("vineyard_id", *wine.VineyardID))
	case err != nil:
		metrics.DegradedTotal.WithLabelValues("enrich_vineyard").Inc()
		s.log.Warn("failed to load vineyard", zap.Int64("wine_id", wine.ID), zap.Error(err))
	default:
		enriched.Vineyard = vineyard
		enriched.Appellation = vineyard.Appellation
		enriched.Region = vineyard.Region
		enriched.Country = vineyard.Country
	}
	return enriched
}
