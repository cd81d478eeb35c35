// preference_service.go
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
	"strconv"
	"strings"
	"time"

	"github.com/localnerve/carmart/internal/metrics"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Fallbacks for omitted or unparsable preference scalars
const DefaultMinYear = 2015

var DefaultMaxMileageWan = decimal.NewFromInt(10)

// PreferenceInput represents the preference form. Brands and types accept a
// single id or a list, as numbers or strings.
type PreferenceInput struct {
	Brands      types.FlexList[types.FlexUint64] `json:"brands"`
	Types       types.FlexList[types.FlexUint64] `json:"types"`
	BudgetRange string                           `json:"budget_range"`
	MinYear     types.FlexString                 `json:"min_year"`
	MaxMileage  types.FlexString                 `json:"max_mileage"`
}

// ParseBudget resolves the budget band, defaulting when omitted
func (in PreferenceInput) ParseBudget() (types.BudgetBand, error) {
	s := strings.TrimSpace(in.BudgetRange)
	if s == "" {
		return types.DefaultBudgetBand, nil
	}
	return types.ParseBudgetBand(s)
}

// ParseMinYear returns the minimum year, or DefaultMinYear if unusable
func (in PreferenceInput) ParseMinYear() int {
	if in.MinYear.Empty() {
		return DefaultMinYear
	}
	year, err := strconv.Atoi(strings.TrimSpace(in.MinYear.String()))
	if err != nil {
		return DefaultMinYear
	}
	return year
}

// ParseMaxMileage returns the mileage ceiling in wan, or DefaultMaxMileageWan
// if unusable
func (in PreferenceInput) ParseMaxMileage() decimal.Decimal {
	if in.MaxMileage.Empty() {
		return DefaultMaxMileageWan
	}
	d, err := decimal.NewFromString(strings.TrimSpace(in.MaxMileage.String()))
	if err != nil || d.IsNegative() {
		return DefaultMaxMileageWan
	}
	return d
}

// GetPreference loads the user's preference with its brand and type sets
func GetPreference(ctx context.Context, db *gorm.DB, userID string) (*models.Preference, error) {
	var pref models.Preference
	err := session(ctx, db).
		Preload("Brands", func(db *gorm.DB) *gorm.DB { return db.Order("brands.id") }).
		Preload("Types", func(db *gorm.DB) *gorm.DB { return db.Order("car_types.id") }).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrPreferenceNotConfigured
		}
		return nil, types.Store("load preference", err)
	}
	return &pref, nil
}

// UpsertPreference creates or replaces the user's preference. Brand and type
// sets are replaced wholesale; ids that do not exist are skipped. An
// unrecognized budget band is rejected before anything is written.
func UpsertPreference(ctx context.Context, db *gorm.DB, userID string, in PreferenceInput) (*models.Preference, error) {
	band, err := in.ParseBudget()
	if err != nil {
		return nil, err
	}
	minYear := in.ParseMinYear()
	maxMileage := in.ParseMaxMileage()
	brandIDs := types.IDs(in.Brands)
	typeIDs := types.IDs(in.Types)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})

		pref, err := lockOrCreatePreference(q, userID)
		if err != nil {
			return err
		}

		var brands []models.Brand
		if len(brandIDs) > 0 {
			if err := q.Where("id IN ?", brandIDs).Order("id").Find(&brands).Error; err != nil {
				return err
			}
		}
		var carTypes []models.CarType
		if len(typeIDs) > 0 {
			if err := q.Where("id IN ?", typeIDs).Order("id").Find(&carTypes).Error; err != nil {
				return err
			}
		}

		if err := replaceAssociation(q, pref, "Brands", brands); err != nil {
			return err
		}
		if err := replaceAssociation(q, pref, "Types", carTypes); err != nil {
			return err
		}

		return q.Model(pref).Updates(map[string]interface{}{
			"budget_band":     band,
			"min_year":        minYear,
			"max_mileage_wan": maxMileage,
		}).Error
	})
	if err != nil {
		return nil, types.Store("save preference", err)
	}

	metrics.PreferenceSaves.Inc()
	return GetPreference(ctx, db, userID)
}

// IgnoredIDs returns the requested ids that did not survive into kept
func IgnoredIDs(requested, kept []uint64) []uint64 {
	keep := make(map[uint64]struct{}, len(kept))
	for _, id := range kept {
		keep[id] = struct{}{}
	}
	var ignored []uint64
	for _, id := range requested {
		if _, ok := keep[id]; !ok {
			ignored = append(ignored, id)
		}
	}
	return ignored
}

// RecordSearch appends a search to the user's bounded search history.
// Users without a preference get ErrPreferenceNotConfigured.
func RecordSearch(ctx context.Context, db *gorm.DB, userID string, entry models.SearchEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})

		pref, err := lockPreference(q, userID)
		if err != nil {
			return err
		}
		history, err := models.AppendBounded(pref.SearchHistory, entry, models.MaxHistoryEntries)
		if err != nil {
			return err
		}
		return q.Model(pref).Update("search_history", history).Error
	})
	return types.Store("record search", err)
}

// appendClick adds a click to the user's click history inside tx. A user
// without a preference has no history to append to and is skipped.
func appendClick(tx *gorm.DB, userID string, entry models.ClickEntry) error {
	pref, err := lockPreference(tx, userID)
	if err != nil {
		if errors.Is(err, types.ErrPreferenceNotConfigured) {
			return nil
		}
		return err
	}
	history, err := models.AppendBounded(pref.ClickHistory, entry, models.MaxHistoryEntries)
	if err != nil {
		return err
	}
	return tx.Model(pref).Update("click_history", history).Error
}

func lockPreference(tx *gorm.DB, userID string) (*models.Preference, error) {
	var pref models.Preference
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrPreferenceNotConfigured
		}
		return nil, err
	}
	return &pref, nil
}

// lockOrCreatePreference inserts a default row when none exists, then locks
// it. The insert ignores a duplicate user_id so racing first saves all land
// on the same row.
func lockOrCreatePreference(tx *gorm.DB, userID string) (*models.Preference, error) {
	pref, err := lockPreference(tx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, types.ErrPreferenceNotConfigured) {
		return nil, err
	}

	seed := &models.Preference{
		UserID:        userID,
		BudgetBand:    types.DefaultBudgetBand,
		MinYear:       DefaultMinYear,
		MaxMileageWan: DefaultMaxMileageWan,
	}
	err = tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(seed).Error
	if err != nil {
		return nil, err
	}
	return lockPreference(tx, userID)
}

func replaceAssociation[T any](tx *gorm.DB, pref *models.Preference, name string, values []T) error {
	assoc := tx.Model(pref).Association(name)
	if len(values) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}
