package services

import (
	"context"
	"errors"

	"github.com/localnerve/carmart/internal/metrics"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Favorite toggle outcomes
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// ToggleFavorite saves the listing for the user, or removes it when it is
// already saved. Only listings the user can see may be favorited.
func ToggleFavorite(ctx context.Context, db *gorm.DB, userID string, carID uint64) (string, error) {
	if _, err := GetListing(ctx, db, Actor{UserID: userID}, carID); err != nil {
		return "", err
	}

	action := FavoriteAdded
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})

		var fav models.Favorite
		err := q.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND car_id = ?", userID, carID).
			First(&fav).Error
		switch {
		case err == nil:
			action = FavoriteRemoved
			return q.Delete(&fav).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		// a concurrent add of the same pair leaves one row
		return q.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "car_id"}},
			DoNothing: true,
		}).Create(&models.Favorite{UserID: userID, CarID: carID}).Error
	})
	if err != nil {
		return "", types.Store("toggle favorite", err)
	}

	metrics.FavoriteToggles.WithLabelValues(action).Inc()
	return action, nil
}

// ListFavorites returns the user's favorites with their listings, newest first
func ListFavorites(ctx context.Context, db *gorm.DB, userID string) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := session(ctx, db).
		Preload("Car").Preload("Car.Brand").Preload("Car.CarType").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, types.Store("list favorites", err)
	}
	return favorites, nil
}
