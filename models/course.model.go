package models

import "time"

// Course is a catalog entry. JSON names match the column names.
type Course struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"not null"`
	Description   string    `json:"description" gorm:"type:text;not null"`
	Price         float64   `json:"price" gorm:"not null;check:price >= 0"`
	DiscountPrice *float64  `json:"discount_price" gorm:"check:discount_price >= 0"`
	AverageRating float64   `json:"average_rating" gorm:"not null;default:0;check:average_rating >= 0 AND average_rating <= 5"`
	ReviewCount   int       `json:"review_count" gorm:"not null;default:0;check:review_count >= 0"`
	Language      string    `json:"language" gorm:"not null"`
	TotalDuration int       `json:"total_duration" gorm:"not null;check:total_duration >= 1"` // minutes
	ThumbnailURL  *string   `json:"thumbnail_url"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}
