// listing_workflow.go
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

// ListingInput represents input for listing creation
type ListingInput struct {
	BrandID        uint64          `json:"brand_id" validate:"required"`
	CarTypeID      uint64          `json:"car_type_id" validate:"required"`
	Model          string          `json:"model" validate:"required,max=100"`
	Year           int             `json:"year" validate:"required,gte=1950,lte=2100"`
	Mileage        decimal.Decimal `json:"mileage"`
	Color          string          `json:"color" validate:"max=20"`
	Transmission   string          `json:"transmission" validate:"omitempty,oneof=manual automatic semi_auto"`
	FuelType       string          `json:"fuel_type" validate:"omitempty,oneof=gasoline diesel electric hybrid"`
	EngineCapacity decimal.Decimal `json:"engine_capacity"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	MainImage      string          `json:"main_image" validate:"max=255"`
	Description    string          `json:"description" validate:"max=5000"`
}

// ListingUpdate represents a partial listing edit. Brand and type are
// accepted only to reject changes to them.
type ListingUpdate struct {
	BrandID        *uint64          `json:"brand_id,omitempty"`
	CarTypeID      *uint64          `json:"car_type_id,omitempty"`
	Model          *string          `json:"model,omitempty" validate:"omitempty,min=1,max=100"`
	Year           *int             `json:"year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	Mileage        *decimal.Decimal `json:"mileage,omitempty"`
	Color          *string          `json:"color,omitempty" validate:"omitempty,max=20"`
	Transmission   *string          `json:"transmission,omitempty" validate:"omitempty,oneof=manual automatic semi_auto"`
	FuelType       *string          `json:"fuel_type,omitempty" validate:"omitempty,oneof=gasoline diesel electric hybrid"`
	EngineCapacity *decimal.Decimal `json:"engine_capacity,omitempty"`
	OriginalPrice  *decimal.Decimal `json:"original_price,omitempty"`
	CurrentPrice   *decimal.Decimal `json:"current_price,omitempty"`
	MainImage      *string          `json:"main_image,omitempty" validate:"omitempty,max=255"`
	Description    *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
}

func checkAmounts(mileage, price *decimal.Decimal) error {
	if mileage != nil && mileage.IsNegative() {
		return fmt.Errorf("%w: mileage must not be negative", types.ErrInvalidInput)
	}
	if price != nil && !price.IsPositive() {
		return fmt.Errorf("%w: current_price must be positive", types.ErrInvalidInput)
	}
	return nil
}

// CreateListing stores a new listing for the seller in pending status
func CreateListing(ctx context.Context, db *gorm.DB, sellerID string, in ListingInput) (*models.Listing, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkAmounts(&in.Mileage, &in.CurrentPrice); err != nil {
		return nil, err
	}
	if in.OriginalPrice.IsZero() {
		in.OriginalPrice = in.CurrentPrice
	}

	listing := models.Listing{
		BrandID:        in.BrandID,
		CarTypeID:      in.CarTypeID,
		Model:          strings.TrimSpace(in.Model),
		Year:           in.Year,
		Mileage:        in.Mileage,
		Color:          in.Color,
		Transmission:   in.Transmission,
		FuelType:       in.FuelType,
		EngineCapacity: in.EngineCapacity,
		OriginalPrice:  in.OriginalPrice,
		CurrentPrice:   in.CurrentPrice,
		MainImage:      in.MainImage,
		Description:    in.Description,
		Status:         types.StatusPending,
		SellerID:       sellerID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Brand{}).Where("id = ?", in.BrandID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: unknown brand %d", types.ErrInvalidInput, in.BrandID)
		}
		if err := tx.Model(&models.CarType{}).Where("id = ?", in.CarTypeID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: unknown car type %d", types.ErrInvalidInput, in.CarTypeID)
		}
		return tx.Create(&listing).Error
	})
	if err != nil {
		return nil, types.Store("create listing", err)
	}

	return reloadListing(ctx, db, listing.ID)
}

// UpdateListing edits a listing owned by sellerID. Status is untouched.
func UpdateListing(ctx context.Context, db *gorm.DB, sellerID string, id uint64, in ListingUpdate) (*models.Listing, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkAmounts(in.Mileage, in.CurrentPrice); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, id)
		if err != nil {
			return err
		}
		if listing.SellerID != sellerID {
			return types.ErrForbidden
		}
		if (in.BrandID != nil && *in.BrandID != listing.BrandID) ||
			(in.CarTypeID != nil && *in.CarTypeID != listing.CarTypeID) {
			return fmt.Errorf("%w: brand and car type cannot be changed", types.ErrInvalidInput)
		}

		updates := map[string]interface{}{}
		if in.Model != nil {
			updates["model"] = strings.TrimSpace(*in.Model)
		}
		if in.Year != nil {
			updates["year"] = *in.Year
		}
		if in.Mileage != nil {
			updates["mileage"] = *in.Mileage
		}
		if in.Color != nil {
			updates["color"] = *in.Color
		}
		if in.Transmission != nil {
			updates["transmission"] = *in.Transmission
		}
		if in.FuelType != nil {
			updates["fuel_type"] = *in.FuelType
		}
		if in.EngineCapacity != nil {
			updates["engine_capacity"] = *in.EngineCapacity
		}
		if in.OriginalPrice != nil {
			updates["original_price"] = *in.OriginalPrice
		}
		if in.CurrentPrice != nil {
			updates["current_price"] = *in.CurrentPrice
		}
		if in.MainImage != nil {
			updates["main_image"] = *in.MainImage
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(listing).Updates(updates).Error
	})
	if err != nil {
		return nil, types.Store("update listing", err)
	}

	return reloadListing(ctx, db, id)
}

// TransitionListing moves a listing to a new status if the actor may make
// that move. Approval stamps the approver, rejection requires a reason, and
// resubmission clears the previous rejection.
func TransitionListing(ctx context.Context, db *gorm.DB, actor Actor, id uint64, to types.ListingStatus, reason string) (*models.Listing, error) {
	reason = strings.TrimSpace(reason)
	if to == types.StatusRejected && reason == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", types.ErrInvalidInput)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, id)
		if err != nil {
			return err
		}

		isOwner := listing.SellerID == actor.UserID
		if !actor.Admin && !isOwner {
			// hide listings the actor has no business with
			if listing.Status != types.StatusApproved {
				return types.ErrNotFound
			}
			return types.ErrForbidden
		}
		if !types.CanTransition(listing.Status, to) {
			return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, listing.Status, to)
		}
		if !types.TransitionAllowed(listing.Status, to, actor.Admin, isOwner) {
			return types.ErrForbidden
		}

		updates := map[string]interface{}{"status": to}
		switch to {
		case types.StatusApproved:
			if listing.Status == types.StatusPending {
				now := time.Now().UTC()
				approver := actor.UserID
				updates["approved_by"] = &approver
				updates["approved_at"] = &now
				updates["rejection_reason"] = ""
			}
		case types.StatusRejected:
			updates["rejection_reason"] = reason
		case types.StatusPending:
			updates["rejection_reason"] = ""
		}

		return tx.Model(listing).Updates(updates).Error
	})
	if err != nil {
		return nil, types.Store("transition listing", err)
	}

	metrics.ListingTransitions.WithLabelValues(string(to)).Inc()
	return reloadListing(ctx, db, id)
}

func lockListing(tx *gorm.DB, id uint64) (*models.Listing, error) {
	var listing models.Listing
	err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func reloadListing(ctx context.Context, db *gorm.DB, id uint64) (*models.Listing, error) {
	var listing models.Listing
	if err := session(ctx, db).Preload("Brand").Preload("CarType").First(&listing, id).Error; err != nil {
		return nil, types.Store("reload listing", err)
	}
	return &listing, nil
}
