// ledger_service.go
//
// A used-car catalog, preference and recommendation data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carmart.
// carmart is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carmart is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carmart.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/carmart/internal/metrics"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// History limits
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

// History returns the user's ledger, newest first
func History(ctx context.Context, db *gorm.DB, userID string, limit int) ([]models.RecommendationRecord, error) {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var records []models.RecommendationRecord
	err := session(ctx, db).
		Preload("Car").Preload("Car.Brand").Preload("Car.CarType").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, types.Store("recommendation history", err)
	}
	return records, nil
}

// MarkViewed flags the user's record as viewed
func MarkViewed(ctx context.Context, db *gorm.DB, userID string, recordID uint64) (*models.RecommendationRecord, error) {
	return updateOwnRecord(ctx, db, userID, recordID, "viewed", func(tx *gorm.DB, rec *models.RecommendationRecord) error {
		return tx.Model(rec).Update("viewed", true).Error
	})
}

// MarkClicked flags the user's record as clicked and appends the click to the
// user's click history
func MarkClicked(ctx context.Context, db *gorm.DB, userID string, recordID uint64) (*models.RecommendationRecord, error) {
	return updateOwnRecord(ctx, db, userID, recordID, "clicked", func(tx *gorm.DB, rec *models.RecommendationRecord) error {
		if err := tx.Model(rec).Update("clicked", true).Error; err != nil {
			return err
		}
		return appendClick(tx, userID, models.ClickEntry{
			CarID:            rec.CarID,
			RecommendationID: rec.ID,
			At:               time.Now().UTC(),
		})
	})
}

// RateRecommendation stores a 1-5 rating on the user's record
func RateRecommendation(ctx context.Context, db *gorm.DB, userID string, recordID uint64, rating int) (*models.RecommendationRecord, error) {
	if rating < 1 || rating > 5 {
		return nil, types.ErrInvalidRating
	}
	return updateOwnRecord(ctx, db, userID, recordID, "rated", func(tx *gorm.DB, rec *models.RecommendationRecord) error {
		return tx.Model(rec).Update("rating", rating).Error
	})
}

// updateOwnRecord locks a record owned by userID and applies fn. Records of
// other users are reported as not found.
func updateOwnRecord(ctx context.Context, db *gorm.DB, userID string, recordID uint64, event string, fn func(*gorm.DB, *models.RecommendationRecord) error) (*models.RecommendationRecord, error) {
	var rec models.RecommendationRecord
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})
		err := q.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", recordID, userID).
			First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		return fn(q, &rec)
	})
	if err != nil {
		return nil, types.Store("update recommendation "+event, err)
	}

	metrics.LedgerEvents.WithLabelValues(event).Inc()

	if err := session(ctx, db).Preload("Car").Preload("Car.Brand").First(&rec, recordID).Error; err != nil {
		return nil, types.Store("reload recommendation", err)
	}
	return &rec, nil
}
