package models

import "time"

// Favorite is a listing a user saved for later
type Favorite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_fav_user_car,priority:1" json:"user_id"`
	CarID     uint64    `gorm:"not null;uniqueIndex:idx_fav_user_car,priority:2" json:"car_id"`
	Car       Listing   `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"car"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}
