// Package testdb opens migrated in-memory SQLite databases for package tests
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/localnerve/carmart/internal/database"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New creates a private in-memory database with every model migrated.
// The pool is a single connection so concurrent callers serialize the way
// they would against a file database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// Catalog holds the reference rows created by Seed
type Catalog struct {
	Toyota, Honda, BMW models.Brand
	Sedan, SUV, MPV    models.CarType
}

// Seed creates three brands and three car types
func Seed(t testing.TB, db *gorm.DB) Catalog {
	t.Helper()

	c := Catalog{
		Toyota: models.Brand{Name: "Toyota", BrandType: "imported"},
		Honda:  models.Brand{Name: "Honda", BrandType: "imported"},
		BMW:    models.Brand{Name: "BMW", BrandType: "imported"},
		Sedan:  models.CarType{Name: "Sedan", Category: "sedan"},
		SUV:    models.CarType{Name: "SUV", Category: "suv"},
		MPV:    models.CarType{Name: "MPV", Category: "mpv"},
	}
	for _, b := range []*models.Brand{&c.Toyota, &c.Honda, &c.BMW} {
		if err := db.Create(b).Error; err != nil {
			t.Fatalf("Failed to seed brand: %v", err)
		}
	}
	for _, ct := range []*models.CarType{&c.Sedan, &c.SUV, &c.MPV} {
		if err := db.Create(ct).Error; err != nil {
			t.Fatalf("Failed to seed car type: %v", err)
		}
	}
	return c
}

// ListingSpec describes a listing to create with AddListing
type ListingSpec struct {
	Brand    models.Brand
	Type     models.CarType
	Model    string
	Year     int
	Mileage  int64 // km
	Price    int64 // raw currency
	Status   types.ListingStatus
	SellerID string
}

// AddListing inserts a listing, defaulting to approved and seller "seller-1"
func AddListing(t testing.TB, db *gorm.DB, s ListingSpec) models.Listing {
	t.Helper()

	if s.Status == "" {
		s.Status = types.StatusApproved
	}
	if s.SellerID == "" {
		s.SellerID = "seller-1"
	}
	if s.Model == "" {
		s.Model = s.Brand.Name + " " + s.Type.Name
	}

	l := models.Listing{
		BrandID:       s.Brand.ID,
		CarTypeID:     s.Type.ID,
		Model:         s.Model,
		Year:          s.Year,
		Mileage:       decimal.NewFromInt(s.Mileage),
		OriginalPrice: decimal.NewFromInt(s.Price),
		CurrentPrice:  decimal.NewFromInt(s.Price),
		Transmission:  "automatic",
		FuelType:      "gasoline",
		Status:        s.Status,
		SellerID:      s.SellerID,
		MainImage:     fmt.Sprintf("cars/%s.jpg", uuid.NewString()[:8]),
	}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("Failed to create listing: %v", err)
	}
	return l
}
