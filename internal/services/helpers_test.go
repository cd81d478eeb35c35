package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/carmart/internal/matching"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

func testEngine() *matching.Engine {
	return matching.NewEngine(matching.Config{MaxYear: 2025})
}

func ids(values ...uint64) types.FlexList[types.FlexUint64] {
	list := make(types.FlexList[types.FlexUint64], 0, len(values))
	for _, v := range values {
		list = append(list, types.FlexUint64(v))
	}
	return list
}

// savePreference stores the sedan-buyer profile used across tests
func savePreference(t *testing.T, db *gorm.DB, userID string, brand models.Brand, carType models.CarType) *models.Preference {
	t.Helper()
	pref, err := services.UpsertPreference(ctx, db, userID, services.PreferenceInput{
		Brands:      ids(brand.ID),
		Types:       ids(carType.ID),
		BudgetRange: "10-20",
		MinYear:     "2018",
		MaxMileage:  "10",
	})
	require.NoError(t, err)
	return pref
}

func countLedger(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.RecommendationRecord{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
