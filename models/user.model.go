package models

import "time"

type User struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	FullName              string    `json:"full_name" gorm:"not null"`
	Username              string    `json:"username" gorm:"not null"`
	Email                 string    `json:"email" gorm:"uniqueIndex;not null"`
	Password              string    `json:"-" gorm:"not null"`
	Role                  string    `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	IsVerified            bool      `json:"is_verified" gorm:"not null;default:false"`
	VerificationToken     *string   `json:"-" gorm:"uniqueIndex"`
	VerificationEmailSent bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
