package models

import (
	"time"

	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
)

// MaxHistoryEntries bounds each behavior log on a preference
const MaxHistoryEntries = 50

// Preference is a buyer's stated car preference, one per user
type Preference struct {
	ID            uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string           `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	Brands        []Brand          `gorm:"many2many:preference_brands;" json:"brands"`
	Types         []CarType        `gorm:"many2many:preference_car_types;" json:"types"`
	BudgetBand    types.BudgetBand `gorm:"size:10;not null;default:'10-20'" json:"budget_range"`
	MinYear       int              `gorm:"not null;default:2015" json:"min_year"`
	MaxMileageWan decimal.Decimal  `gorm:"type:decimal(8,2);not null" json:"max_mileage"`
	SearchHistory JSON             `json:"search_history"`
	ClickHistory  JSON             `json:"click_history"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// BrandIDs returns the ids of the preferred brands
func (p *Preference) BrandIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Brands))
	for _, b := range p.Brands {
		ids = append(ids, b.ID)
	}
	return ids
}

// TypeIDs returns the ids of the preferred car types
func (p *Preference) TypeIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Types))
	for _, t := range p.Types {
		ids = append(ids, t.ID)
	}
	return ids
}

// SearchEntry is one logged catalog search
type SearchEntry struct {
	Query      string    `json:"query,omitempty"`
	BrandID    uint64    `json:"brand_id,omitempty"`
	TypeID     uint64    `json:"type_id,omitempty"`
	PriceRange string    `json:"price_range,omitempty"`
	At         time.Time `json:"at"`
}

// ClickEntry is one logged recommendation click
type ClickEntry struct {
	CarID            uint64    `json:"car_id"`
	RecommendationID uint64    `json:"recommendation_id"`
	At               time.Time `json:"at"`
}
