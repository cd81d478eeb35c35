package services_test

import (
	"testing"

	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/testdb"
	"github.com/localnerve/carmart/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestToggleFavorite(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	car := testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Toyota, Type: cat.Sedan, Model: "Camry", Year: 2020, Mileage: 30000, Price: 150000})

	action, err := services.ToggleFavorite(ctx, db, "user-1", car.ID)
	require.NoError(t, err)
	assert.Equal(t, services.FavoriteAdded, action)

	favs, err := services.ListFavorites(ctx, db, "user-1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, car.ID, favs[0].CarID)
	assert.Equal(t, "Camry", favs[0].Car.Model)
	assert.Equal(t, "Toyota", favs[0].Car.Brand.Name)

	others, err := services.ListFavorites(ctx, db, "user-2")
	require.NoError(t, err)
	assert.Empty(t, others)

	action, err = services.ToggleFavorite(ctx, db, "user-1", car.ID)
	require.NoError(t, err)
	assert.Equal(t, services.FavoriteRemoved, action)

	favs, err = services.ListFavorites(ctx, db, "user-1")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestToggleFavoriteHiddenOrMissingListing(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	pending := testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Honda, Type: cat.SUV, Year: 2020, Mileage: 30000, Price: 150000, Status: types.StatusPending})

	_, err := services.ToggleFavorite(ctx, db, "user-1", pending.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = services.ToggleFavorite(ctx, db, "user-1", 9999)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// the seller can see, and so save, their own pending listing
	action, err := services.ToggleFavorite(ctx, db, "seller-1", pending.ID)
	require.NoError(t, err)
	assert.Equal(t, services.FavoriteAdded, action)
}

func TestToggleFavoriteConcurrentUsers(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	car := testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.BMW, Type: cat.SUV, Year: 2021, Mileage: 10000, Price: 400000})

	var g errgroup.Group
	for _, user := range []string{"a", "b", "c", "d"} {
		g.Go(func() error {
			_, err := services.ToggleFavorite(ctx, db, user, car.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var n int64
	require.NoError(t, db.Model(&models.Favorite{}).Where("car_id = ?", car.ID).Count(&n).Error)
	assert.Equal(t, int64(4), n)
}
