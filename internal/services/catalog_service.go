// catalog_service.go
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
	"fmt"

	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// Listing page sizes
const (
	DefaultPageSize     = 20
	MaxPageSize         = 100
	DefaultLatestLimit  = 6
	maxLatestLimit      = 50
	catalogQueryComment = "carmart:catalog"
)

var wan = decimal.NewFromInt(10000)

// Actor is the authenticated caller as far as the services care
type Actor struct {
	UserID string
	Admin  bool
}

// session returns a context-bound session with GORM logging silenced
func session(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// catalogQuery tags catalog reads so they can be picked out of slow query logs.
// The returned session is safe to reuse for several queries.
func catalogQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return session(ctx, db.Clauses(hints.Comment("select", catalogQueryComment)))
}

// BrandInput represents input for brand creation
type BrandInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	BrandType   string `json:"brand_type" validate:"omitempty,oneof=domestic imported"`
	Description string `json:"description" validate:"max=2000"`
}

// CarTypeInput represents input for car type creation
type CarTypeInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Category    string `json:"category" validate:"required,oneof=sedan suv mpv coupe hatchback wagon pickup"`
	Description string `json:"description" validate:"max=2000"`
}

// ListBrands returns every brand ordered by name
func ListBrands(ctx context.Context, db *gorm.DB, c *cache.Cache) ([]models.Brand, error) {
	return cache.GetOrLoad(ctx, c, cache.KeyBrands, cache.ReferenceTTL, func() ([]models.Brand, error) {
		var brands []models.Brand
		if err := catalogQuery(ctx, db).Order("name").Find(&brands).Error; err != nil {
			return nil, types.Store("list brands", err)
		}
		return brands, nil
	})
}

// ListCarTypes returns every car type ordered by name
func ListCarTypes(ctx context.Context, db *gorm.DB, c *cache.Cache) ([]models.CarType, error) {
	return cache.GetOrLoad(ctx, c, cache.KeyCarTypes, cache.ReferenceTTL, func() ([]models.CarType, error) {
		var carTypes []models.CarType
		if err := catalogQuery(ctx, db).Order("name").Find(&carTypes).Error; err != nil {
			return nil, types.Store("list car types", err)
		}
		return carTypes, nil
	})
}

// CreateBrand adds a brand and invalidates the cached brand list
func CreateBrand(ctx context.Context, db *gorm.DB, c *cache.Cache, in BrandInput) (*models.Brand, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.BrandType == "" {
		in.BrandType = "domestic"
	}

	brand := models.Brand{Name: in.Name, BrandType: in.BrandType, Description: in.Description}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Brand{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: brand %q", types.ErrConflict, in.Name)
		}
		return tx.Create(&brand).Error
	})
	if err != nil {
		return nil, types.Store("create brand", err)
	}

	_ = c.Delete(ctx, cache.KeyBrands)
	return &brand, nil
}

// CreateCarType adds a car type and invalidates the cached type list
func CreateCarType(ctx context.Context, db *gorm.DB, c *cache.Cache, in CarTypeInput) (*models.CarType, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	carType := models.CarType{Name: in.Name, Category: in.Category, Description: in.Description}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CarType{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: car type %q", types.ErrConflict, in.Name)
		}
		return tx.Create(&carType).Error
	})
	if err != nil {
		return nil, types.Store("create car type", err)
	}

	_ = c.Delete(ctx, cache.KeyCarTypes)
	return &carType, nil
}

// ListingFilter narrows the public listing view
type ListingFilter struct {
	BrandID    uint64
	TypeID     uint64
	PriceRange string
	Page       int
	PageSize   int
}

// ListingPage is one page of listings
type ListingPage struct {
	Listings []models.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (f *ListingFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// ListListings returns approved listings, newest first
func ListListings(ctx context.Context, db *gorm.DB, f ListingFilter) (*ListingPage, error) {
	f.normalize()

	query := catalogQuery(ctx, db).Model(&models.Listing{}).Where("status = ?", types.StatusApproved)
	if f.BrandID != 0 {
		query = query.Where("brand_id = ?", f.BrandID)
	}
	if f.TypeID != 0 {
		query = query.Where("car_type_id = ?", f.TypeID)
	}
	if f.PriceRange != "" {
		band, err := types.ParseBudgetBand(f.PriceRange)
		if err != nil {
			return nil, err
		}
		min, max, unbounded := band.Interval()
		query = query.Where("current_price >= ?", min.Mul(wan))
		if !unbounded {
			query = query.Where("current_price < ?", max.Mul(wan))
		}
	}

	page := &ListingPage{Page: f.Page, PageSize: f.PageSize}
	if err := query.Count(&page.Total).Error; err != nil {
		return nil, types.Store("count listings", err)
	}

	err := query.Preload("Brand").Preload("CarType").
		Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&page.Listings).Error
	if err != nil {
		return nil, types.Store("list listings", err)
	}

	return page, nil
}

// LatestListings returns the newest approved listings
func LatestListings(ctx context.Context, db *gorm.DB, limit int) ([]models.Listing, error) {
	if limit < 1 {
		limit = DefaultLatestLimit
	}
	if limit > maxLatestLimit {
		limit = maxLatestLimit
	}

	var listings []models.Listing
	err := catalogQuery(ctx, db).Preload("Brand").Preload("CarType").
		Where("status = ?", types.StatusApproved).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, types.Store("latest listings", err)
	}
	return listings, nil
}

// GetListing returns one listing. Listings that are not approved are only
// visible to their seller and admins; everyone else gets ErrNotFound.
func GetListing(ctx context.Context, db *gorm.DB, actor Actor, id uint64) (*models.Listing, error) {
	var listing models.Listing
	err := catalogQuery(ctx, db).Preload("Brand").Preload("CarType").First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, types.Store("get listing", err)
	}

	if listing.Status != types.StatusApproved && !actor.Admin && listing.SellerID != actor.UserID {
		return nil, types.ErrNotFound
	}
	return &listing, nil
}

// CatalogStats summarizes the catalog
type CatalogStats struct {
	Total           int64                         `json:"total"`
	ByStatus        map[types.ListingStatus]int64 `json:"by_status"`
	Approved        int64                         `json:"approved"`
	Brands          int64                         `json:"brands"`
	CarTypes        int64                         `json:"car_types"`
	AveragePriceWan decimal.Decimal               `json:"average_price_wan"`
}

// Statistics counts listings per status and reference rows, and averages the
// approved price in wan rounded to one decimal.
func Statistics(ctx context.Context, db *gorm.DB) (*CatalogStats, error) {
	stats := &CatalogStats{ByStatus: make(map[types.ListingStatus]int64, len(types.ListingStatuses))}
	for _, st := range types.ListingStatuses {
		stats.ByStatus[st] = 0
	}

	var rows []struct {
		Status types.ListingStatus
		Count  int64
	}
	q := catalogQuery(ctx, db)
	if err := q.Model(&models.Listing{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, types.Store("count by status", err)
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}
	stats.Approved = stats.ByStatus[types.StatusApproved]

	if err := q.Model(&models.Brand{}).Count(&stats.Brands).Error; err != nil {
		return nil, types.Store("count brands", err)
	}
	if err := q.Model(&models.CarType{}).Count(&stats.CarTypes).Error; err != nil {
		return nil, types.Store("count car types", err)
	}

	var avg decimal.NullDecimal
	err := q.Model(&models.Listing{}).
		Select("AVG(current_price)").
		Where("status = ?", types.StatusApproved).
		Row().Scan(&avg)
	if err != nil {
		return nil, types.Store("average price", err)
	}
	if avg.Valid {
		stats.AveragePriceWan = avg.Decimal.Div(wan).Round(1)
	}

	return stats, nil
}

// ListSellerListings returns every listing the seller owns, any status
func ListSellerListings(ctx context.Context, db *gorm.DB, sellerID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := catalogQuery(ctx, db).Preload("Brand").Preload("CarType").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").Order("id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, types.Store("seller listings", err)
	}
	return listings, nil
}

// ListAllListings is the admin management view, optionally by status
func ListAllListings(ctx context.Context, db *gorm.DB, status string) ([]models.Listing, error) {
	query := catalogQuery(ctx, db).Preload("Brand").Preload("CarType")
	if status != "" {
		st, err := types.ParseListingStatus(status)
		if err != nil {
			return nil, err
		}
		query = query.Where("status = ?", st)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC").Order("id DESC").Find(&listings).Error; err != nil {
		return nil, types.Store("all listings", err)
	}
	return listings, nil
}
