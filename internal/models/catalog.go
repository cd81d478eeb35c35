package models

import (
	"time"

	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
)

// Brand is a car manufacturer
type Brand struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	BrandType   string    `gorm:"size:20;not null;default:domestic" json:"brand_type"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CarType is a body style
type CarType struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Category    string    `gorm:"size:20;not null" json:"category"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Listing is a car offered for sale. Mileage is kilometres and prices are raw
// currency units.
type Listing struct {
	ID              uint64              `gorm:"primaryKey;autoIncrement" json:"id"`
	BrandID         uint64              `gorm:"not null;index" json:"brand_id"`
	Brand           Brand               `gorm:"foreignKey:BrandID;constraint:OnDelete:RESTRICT" json:"brand"`
	CarTypeID       uint64              `gorm:"not null;index" json:"car_type_id"`
	CarType         CarType             `gorm:"foreignKey:CarTypeID;constraint:OnDelete:RESTRICT" json:"car_type"`
	Model           string              `gorm:"size:100;not null" json:"model"`
	Year            int                 `gorm:"not null" json:"year"`
	Mileage         decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"mileage"`
	Color           string              `gorm:"size:20" json:"color"`
	Transmission    string              `gorm:"size:20" json:"transmission"`
	FuelType        string              `gorm:"size:20" json:"fuel_type"`
	EngineCapacity  decimal.Decimal     `gorm:"type:decimal(4,1)" json:"engine_capacity"`
	OriginalPrice   decimal.Decimal     `gorm:"type:decimal(12,2)" json:"original_price"`
	CurrentPrice    decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"current_price"`
	MainImage       string              `gorm:"size:255" json:"main_image"`
	Description     string              `gorm:"type:text" json:"description"`
	Status          types.ListingStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	SellerID        string              `gorm:"size:64;not null;index" json:"seller_id"`
	ApprovedBy      *string             `gorm:"size:64" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time          `json:"approved_at,omitempty"`
	RejectionReason string              `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TableName overrides the table name for Listing
func (Listing) TableName() string {
	return "cars"
}

// TableName overrides the table name for CarType
func (CarType) TableName() string {
	return "car_types"
}
