package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/types"
	"gorm.io/gorm"
)

// CatalogStore answers catalog lookups with gorm. It works on Postgres and SQLite.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// FindWines returns rated wines matching q, best rated first.
func (s *CatalogStore) FindWines(ctx context.Context, q types.WineQuery) ([]model.Wine, error) {
	tx := s.db.WithContext(ctx).
		Model(&model.Wine{}).
		Select("wines.*").
		Where("wines.rating IS NOT NULL")

	tx = whereContains(tx, "wines.name", q.Name)
	tx = whereContains(tx, "wines.grape", q.Grape)
	tx = whereContains(tx, "wines.classification", q.WineType)
	tx = whereContains(tx, "wines.classification", q.Classification)

	if q.Region != "" || q.Country != "" || q.Appellation != "" || q.Vineyard != "" {
		tx = tx.Joins("JOIN vineyards ON vineyards.vineyard_id = wines.vineyard_id")
		tx = whereContains(tx, "vineyards.region", q.Region)
		tx = whereContains(tx, "vineyards.country", q.Country)
		tx = whereContains(tx, "vineyards.appelation", q.Appellation)
		tx = whereContains(tx, "vineyards.name", q.Vineyard)
	}

	if q.Year != nil {
		tx = tx.Where("wines.year = ?", *q.Year)
	}

	if q.Food != "" {
		tx = tx.Where(
			"wines.wine_id IN (SELECT food_pairings.wine_id FROM food_pairings WHERE LOWER(food_pairings.name) LIKE ? ESCAPE '\\')",
			likePattern(q.Food),
		)
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var wines []model.Wine
	if err := tx.Order("wines.rating DESC").Order("wines.wine_id ASC").Find(&wines).Error; err != nil {
		return nil, fmt.Errorf("failed to query wines: %w", err)
	}
	return wines, nil
}

// Wine fetches one wine by id regardless of rating.
func (s *CatalogStore) Wine(ctx context.Context, wineID int64) (*model.Wine, error) {
	var wine model.Wine
	if err := s.db.WithContext(ctx).First(&wine, "wine_id = ?", wineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wine: %w", err)
	}
	return &wine, nil
}

// FoodPairings returns the pairing terms of a wine in insertion order.
func (s *CatalogStore) FoodPairings(ctx context.Context, wineID int64) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).
		Model(&model.FoodPairing{}).
		Where("wine_id = ?", wineID).
		Order("food_pairing_id ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get food pairings: %w", err)
	}
	return names, nil
}

func (s *CatalogStore) Vineyard(ctx context.Context, vineyardID int64) (*model.Vineyard, error) {
	var vineyard model.Vineyard
	if err := s.db.WithContext(ctx).First(&vineyard, "vineyard_id = ?", vineyardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vineyard: %w", err)
	}
	return &vineyard, nil
}

func whereContains(tx *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return tx
	}
	return tx.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", likePattern(value))
}

// likePattern lowercases value and escapes LIKE wildcards so user text only ever matches
// literally.
func likePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(value))) + "%"
}
