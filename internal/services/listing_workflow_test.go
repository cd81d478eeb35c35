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
	"gorm.io/gorm"
)

var (
	admin  = services.Actor{UserID: "admin-1", Admin: true}
	seller = services.Actor{UserID: "seller-1"}
	other  = services.Actor{UserID: "seller-2"}
)

func newListing(t *testing.T, db *gorm.DB, cat testdb.Catalog) *models.Listing {
	t.Helper()
	l, err := services.CreateListing(ctx, db, seller.UserID, services.ListingInput{
		BrandID:      cat.Toyota.ID,
		CarTypeID:    cat.Sedan.ID,
		Model:        "Corolla",
		Year:         2019,
		Mileage:      decimal.NewFromInt(42000),
		Transmission: "automatic",
		FuelType:     "hybrid",
		CurrentPrice: decimal.NewFromInt(98000),
	})
	require.NoError(t, err)
	return l
}

func TestCreateListing(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)

	l := newListing(t, db, cat)
	assert.Equal(t, types.StatusPending, l.Status)
	assert.Equal(t, "seller-1", l.SellerID)
	assert.Equal(t, "Toyota", l.Brand.Name)
	assert.True(t, l.OriginalPrice.Equal(decimal.NewFromInt(98000)))

	_, err := services.CreateListing(ctx, db, seller.UserID, services.ListingInput{
		BrandID: 999, CarTypeID: cat.Sedan.ID, Model: "Ghost", Year: 2020, CurrentPrice: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = services.CreateListing(ctx, db, seller.UserID, services.ListingInput{
		BrandID: cat.Toyota.ID, CarTypeID: cat.Sedan.ID, Model: "Free", Year: 2020,
	})
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = services.CreateListing(ctx, db, seller.UserID, services.ListingInput{
		BrandID: cat.Toyota.ID, CarTypeID: cat.Sedan.ID, Model: "Odd", Year: 2020, FuelType: "steam", CurrentPrice: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestUpdateListing(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	l := newListing(t, db, cat)

	color := "red"
	price := decimal.NewFromInt(91000)
	updated, err := services.UpdateListing(ctx, db, seller.UserID, l.ID, services.ListingUpdate{Color: &color, CurrentPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "red", updated.Color)
	assert.True(t, updated.CurrentPrice.Equal(price))
	assert.Equal(t, types.StatusPending, updated.Status)

	_, err = services.UpdateListing(ctx, db, other.UserID, l.ID, services.ListingUpdate{Color: &color})
	assert.ErrorIs(t, err, types.ErrForbidden)

	honda := cat.Honda.ID
	_, err = services.UpdateListing(ctx, db, seller.UserID, l.ID, services.ListingUpdate{BrandID: &honda})
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	same := cat.Toyota.ID
	_, err = services.UpdateListing(ctx, db, seller.UserID, l.ID, services.ListingUpdate{BrandID: &same})
	assert.NoError(t, err)

	_, err = services.UpdateListing(ctx, db, seller.UserID, 31337, services.ListingUpdate{Color: &color})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTransitionApproveAndSell(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	l := newListing(t, db, cat)

	_, err := services.TransitionListing(ctx, db, seller, l.ID, types.StatusApproved, "")
	assert.ErrorIs(t, err, types.ErrForbidden)

	approved, err := services.TransitionListing(ctx, db, admin, l.ID, types.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	_, err = services.TransitionListing(ctx, db, other, l.ID, types.StatusSold, "")
	assert.ErrorIs(t, err, types.ErrForbidden)

	maint, err := services.TransitionListing(ctx, db, seller, l.ID, types.StatusMaintenance, "")
	require.NoError(t, err)
	assert.Equal(t, types.StatusMaintenance, maint.Status)

	_, err = services.TransitionListing(ctx, db, seller, l.ID, types.StatusApproved, "")
	require.NoError(t, err)

	sold, err := services.TransitionListing(ctx, db, seller, l.ID, types.StatusSold, "")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSold, sold.Status)

	_, err = services.TransitionListing(ctx, db, admin, l.ID, types.StatusApproved, "")
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestTransitionRejectAndResubmit(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	l := newListing(t, db, cat)

	_, err := services.TransitionListing(ctx, db, other, l.ID, types.StatusSold, "")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = services.TransitionListing(ctx, db, admin, l.ID, types.StatusRejected, "  ")
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	rejected, err := services.TransitionListing(ctx, db, admin, l.ID, types.StatusRejected, "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, "blurry photos", rejected.RejectionReason)

	_, err = services.TransitionListing(ctx, db, admin, l.ID, types.StatusPending, "")
	assert.ErrorIs(t, err, types.ErrForbidden)

	resubmitted, err := services.TransitionListing(ctx, db, seller, l.ID, types.StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, resubmitted.Status)
	assert.Empty(t, resubmitted.RejectionReason)

	_, err = services.TransitionListing(ctx, db, seller, l.ID, types.StatusSold, "")
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestManagementViews(t *testing.T) {
	db := testdb.New(t)
	cat := testdb.Seed(t, db)
	newListing(t, db, cat)
	testdb.AddListing(t, db, testdb.ListingSpec{Brand: cat.Honda, Type: cat.SUV, Year: 2020, Mileage: 1, Price: 100000, SellerID: "seller-2"})

	mine, err := services.ListSellerListings(ctx, db, seller.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := services.ListAllListings(ctx, db, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := services.ListAllListings(ctx, db, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = services.ListAllListings(ctx, db, "lost")
	assert.ErrorIs(t, err, types.ErrInvalidStatus)
}
