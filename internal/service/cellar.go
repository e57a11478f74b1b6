package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/types"
	"gorm.io/gorm"
)

// CellarService manages the wines users have saved, together with their own ratings.
type CellarService struct {
	db *gorm.DB
}

func NewCellarService(db *gorm.DB) *CellarService {
	return &CellarService{db: db}
}

// List returns the user's cellar in the order wines were added.
func (s *CellarService) List(ctx context.Context, username string) ([]types.CellarWine, error) {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return nil, err
	}

	cellar := []types.CellarWine{}
	err = s.db.WithContext(ctx).
		Table("cellar").
		Select("wines.*, ratings.value AS user_rating, ratings.description AS description").
		Joins("JOIN wines ON wines.wine_id = cellar.wine_id").
		Joins("LEFT JOIN ratings ON ratings.rating_id = cellar.rating_id").
		Where("cellar.user_id = ?", user.ID).
		Order("cellar.cellar_id ASC").
		Scan(&cellar).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cellar: %w", err)
	}
	return cellar, nil
}

// Add saves a wine to the cellar. A rating, when given, is stored with the review.
func (s *CellarService) Add(ctx context.Context, req types.AddToCellarRequest) (*model.CellarEntry, error) {
	user, err := s.userByName(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	var entry model.CellarEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wineCount int64
		if err := tx.Model(&model.Wine{}).Where("wine_id = ?", req.WineID).Count(&wineCount).Error; err != nil {
			return fmt.Errorf("failed to check wine: %w", err)
		}
		if wineCount == 0 {
			return ErrWineNotFound
		}

		var existing int64
		if err := tx.Model(&model.CellarEntry{}).
			Where("user_id = ? AND wine_id = ?", user.ID, req.WineID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check cellar: %w", err)
		}
		if existing > 0 {
			return ErrCellarEntryExists
		}

		now := time.Now().UTC()
		entry = model.CellarEntry{UserID: user.ID, WineID: req.WineID, CreatedAt: now}

		if req.Rating != nil {
			rating := model.Rating{
				UserID:      user.ID,
				WineID:      req.WineID,
				Value:       *req.Rating,
				Description: strings.TrimSpace(req.Review),
				CreatedAt:   now,
			}
			if err := tx.Create(&rating).Error; err != nil {
				return fmt.Errorf("failed to create rating: %w", err)
			}
			entry.RatingID = &rating.ID
		}

		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to add to cellar: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes one wine from the user's cellar.
func (s *CellarService) Remove(ctx context.Context, username string, wineID int64) error {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND wine_id = ?", user.ID, wineID).
		Delete(&model.CellarEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove from cellar: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCellarEntryNotFound
	}
	return nil
}

func (s *CellarService) userByName(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
