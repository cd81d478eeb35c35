package models

import "time"

// RecommendationRecord is a ledger row: the first time a listing was
// recommended to a user, plus what the user did with it.
type RecommendationRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_user_car,priority:1;index:idx_user_created,priority:1" json:"user_id"`
	CarID     uint64    `gorm:"not null;uniqueIndex:idx_user_car,priority:2" json:"car_id"`
	Car       Listing   `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"car"`
	Score     int       `gorm:"not null" json:"score"`
	Reason    string    `gorm:"size:500" json:"reason"`
	Viewed    bool      `gorm:"not null;default:false" json:"viewed"`
	Clicked   bool      `gorm:"not null;default:false" json:"clicked"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_user_created,priority:2" json:"created_at"`
}

// TableName overrides the table name for RecommendationRecord
func (RecommendationRecord) TableName() string {
	return "recommendation_records"
}
