package services_test

import (
	"testing"

	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/testdb"
	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRecommendRequiresPreference(t *testing.T) {
	db := testdb.New(t)

	_, err := services.Recommend(ctx, db, testEngine(), "user-1")
	assert.ErrorIs(t, err, types.ErrPreferenceNotConfigured)
	assert.Zero(t, countLedger(t, db, "user-1"))
}

func TestRecommendEndToEnd(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	savePreference(t, db, "user-1", cat.Toyota, cat.Sedan)

	a := testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.Sedan, Model: "Camry", Year: 2021, Mileage: 35000, Price: 150000})
	testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Honda, Type: cat.SUV, Year: 2016, Mileage: 200000, Price: 600000})
	testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.Sedan, Year: 2022, Mileage: 1000, Price: 150000, Status: types.StatusPending})

	recs, err := services.Recommend(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "Toyota", got.Brand)
	assert.Equal(t, "Camry", got.Model)
	assert.Equal(t, 2021, got.Year)
	assert.Equal(t, "3.5", got.Mileage)
	assert.Equal(t, "15.0", got.Price)
	assert.Equal(t, 100, got.MatchScore)
	assert.Equal(t, "matches brand preference; matches type preference; meets year requirement; mileage within acceptable range; price within budget", got.Reason)
	assert.Equal(t, a.MainImage, got.MainImage)

	var rec models.RecommendationRecord
	require.NoError(t, db.Where("user_id = ? AND car_id = ?", "user-1", a.ID).First(&rec).Error)
	assert.Equal(t, 100, rec.Score)
	assert.Equal(t, got.Reason, rec.Reason)
	assert.False(t, rec.Viewed)
	assert.Nil(t, rec.Rating)
}

func TestRecommendEmptyCatalog(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	savePreference(t, db, "user-1", cat.Toyota, cat.Sedan)

	recs, err := services.Recommend(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, countLedger(t, db, "user-1"))
}

func TestRecommendDoesNotOverwriteLedger(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	savePreference(t, db, "user-1", cat.Toyota, cat.Sedan)
	a := testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.Sedan, Year: 2021, Mileage: 35000, Price: 150000})

	_, err := services.Recommend(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)

	// price moves out of the budget band, the score drops to 90
	require.NoError(t, db.Model(&a).Update("current_price", decimal.NewFromInt(300000)).Error)

	recs, err := services.Recommend(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 90, recs[0].MatchScore)

	assert.Equal(t, int64(1), countLedger(t, db, "user-1"))
	var rec models.RecommendationRecord
	require.NoError(t, db.Where("user_id = ?", "user-1").First(&rec).Error)
	assert.Equal(t, 100, rec.Score)
	assert.Contains(t, rec.Reason, "price within budget")
}

func TestRefreshRecommendationsOverwrites(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	savePreference(t, db, "user-1", cat.Toyota, cat.Sedan)
	a := testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.Sedan, Year: 2021, Mileage: 35000, Price: 150000})

	_, err := services.Recommend(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)
	require.NoError(t, db.Model(&a).Update("current_price", decimal.NewFromInt(300000)).Error)

	recs, err := services.RefreshRecommendations(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, int64(1), countLedger(t, db, "user-1"))
	var rec models.RecommendationRecord
	require.NoError(t, db.Where("user_id = ?", "user-1").First(&rec).Error)
	assert.Equal(t, 90, rec.Score)
	assert.NotContains(t, rec.Reason, "price within budget")
}

func TestRecommendTopSixAndLedgerPerUser(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	savePreference(t, db, "user-1", cat.Toyota, cat.Sedan)
	savePreference(t, db, "user-2", cat.Toyota, cat.Sedan)

	for i := 0; i < 10; i++ {
		testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.SUV, Year: 2019 + i%3, Mileage: 50000, Price: 120000})
	}

	recs, err := services.Recommend(ctx, db, testEngine(), "user-1")
	require.NoError(t, err)
	assert.Len(t, recs, 6)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].MatchScore, recs[i].MatchScore)
	}

	_, err = services.Recommend(ctx, db, testEngine(), "user-2")
	require.NoError(t, err)

	assert.Equal(t, int64(6), countLedger(t, db, "user-1"))
	assert.Equal(t, int64(6), countLedger(t, db, "user-2"))
}

func TestRecommendConcurrentSameUser(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	savePreference(t, db, "user-1", cat.Toyota, cat.Sedan)
	for i := 0; i < 10; i++ {
		testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.Sedan, Year: 2020, Mileage: 40000, Price: 160000})
	}

	engine := testEngine()
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := services.Recommend(ctx, db, engine, "user-1")
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(6), countLedger(t, db, "user-1"))

	var dupes int64
	require.NoError(t, db.Raw(
		"SELECT COUNT(*) FROM (SELECT car_id FROM recommendation_records WHERE user_id = ? GROUP BY car_id HAVING COUNT(*) > 1) d",
		"user-1",
	).Scan(&dupes).Error)
	assert.Zero(t, dupes)
}
