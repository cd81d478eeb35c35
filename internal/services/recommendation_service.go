// recommendation_service.go
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

	"github.com/localnerve/carmart/internal/matching"
	"github.com/localnerve/carmart/internal/metrics"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recommendation is one ranked listing as returned to the buyer. Mileage and
// price are in wan with one decimal.
type Recommendation struct {
	ID         uint64 `json:"id"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	Mileage    string `json:"mileage"`
	Price      string `json:"price"`
	MatchScore int    `json:"matchScore"`
	Reason     string `json:"reason"`
	MainImage  string `json:"main_image"`
}

// Recommend ranks approved listings for the user and records each returned
// pair in the ledger if it is not there yet. Existing ledger rows keep their
// original score and reason; the response carries the fresh values.
func Recommend(ctx context.Context, db *gorm.DB, engine *matching.Engine, userID string) ([]Recommendation, error) {
	return recommend(ctx, db, engine, userID, false)
}

// RefreshRecommendations ranks like Recommend but overwrites the stored score
// and reason of every returned pair.
func RefreshRecommendations(ctx context.Context, db *gorm.DB, engine *matching.Engine, userID string) ([]Recommendation, error) {
	return recommend(ctx, db, engine, userID, true)
}

func recommend(ctx context.Context, db *gorm.DB, engine *matching.Engine, userID string, overwrite bool) (recs []Recommendation, err error) {
	start := time.Now()
	var scores []int
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, types.ErrPreferenceNotConfigured):
			outcome = "no_preference"
		case err != nil:
			outcome = "error"
		case len(recs) == 0:
			outcome = "empty"
		}
		metrics.ObserveRecommend(outcome, scores, time.Since(start))
	}()

	pref, err := GetPreference(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	profile := matching.NewProfile(pref.BrandIDs(), pref.TypeIDs(), pref.BudgetBand, pref.MinYear, pref.MaxMileageWan)

	listings, err := approvedListings(ctx, db)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*models.Listing, len(listings))
	candidates := make([]matching.Candidate, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		byID[l.ID] = l
		candidates = append(candidates, matching.Candidate{
			ID:      l.ID,
			BrandID: l.BrandID,
			TypeID:  l.CarTypeID,
			Year:    l.Year,
			Mileage: l.Mileage,
			Price:   l.CurrentPrice,
		})
	}

	matches := engine.Recommend(profile, candidates)
	if err := recordMatches(ctx, db, userID, matches, overwrite); err != nil {
		return nil, err
	}

	recs = make([]Recommendation, 0, len(matches))
	for _, m := range matches {
		l := byID[m.Candidate.ID]
		scores = append(scores, m.Score)
		recs = append(recs, Recommendation{
			ID:         l.ID,
			Brand:      l.Brand.Name,
			Model:      l.Model,
			Year:       l.Year,
			Mileage:    matching.ToWan(l.Mileage).StringFixed(1),
			Price:      matching.ToWan(l.CurrentPrice).StringFixed(1),
			MatchScore: m.Score,
			Reason:     m.Reason(),
			MainImage:  l.MainImage,
		})
	}
	return recs, nil
}

// approvedListings loads every approved listing in ascending id order
func approvedListings(ctx context.Context, db *gorm.DB) ([]models.Listing, error) {
	var listings []models.Listing
	err := catalogQuery(ctx, db).Preload("Brand").
		Where("status = ?", types.StatusApproved).
		Order("id").
		Find(&listings).Error
	if err != nil {
		return nil, types.Store("load approved listings", err)
	}
	return listings, nil
}

// recordMatches writes ledger rows for the matches. The unique (user, car)
// index plus conflict handling keeps one row per pair under concurrent calls.
func recordMatches(ctx context.Context, db *gorm.DB, userID string, matches []matching.Match, overwrite bool) error {
	if len(matches) == 0 {
		return nil
	}

	rows := make([]models.RecommendationRecord, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, models.RecommendationRecord{
			UserID: userID,
			CarID:  m.Candidate.ID,
			Score:  m.Score,
			Reason: m.Reason(),
		})
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "car_id"}},
		DoNothing: true,
	}
	if overwrite {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "car_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "reason"}),
		}
	}

	res := session(ctx, db).Omit(clause.Associations).Clauses(onConflict).Create(&rows)
	if res.Error != nil {
		return types.Store("record recommendations", res.Error)
	}
	if !overwrite {
		metrics.LedgerInserts.Add(float64(res.RowsAffected))
	}
	return nil
}
