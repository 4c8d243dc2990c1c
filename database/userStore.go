package database

import (
	"context"
	"time"

	"coursehub/models"

	"gorm.io/gorm"
)

// UserStore persists users with GORM. Email and verification-token
// uniqueness are enforced by unique indexes.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ConsumeVerificationToken marks the owner of token as verified and clears
// the token in one conditional update, so a token can succeed only once.
func (s *UserStore) ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("verification_token = ? AND is_verified = ?", token, false).First(&user).Error; err != nil {
			return err
		}

		result := tx.Model(&models.User{}).
			Where("id = ? AND verification_token = ?", user.ID, token).
			Updates(map[string]any{"is_verified": true, "verification_token": nil})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		user.IsVerified = true
		user.VerificationToken = nil
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) MarkVerificationEmailSent(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("verification_email_sent", true).Error
}

// PendingVerificationEmails lists unverified users created before
// createdBefore whose verification email has not gone out yet, oldest first.
func (s *UserStore) PendingVerificationEmails(ctx context.Context, createdBefore time.Time, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("is_verified = ? AND verification_email_sent = ? AND verification_token IS NOT NULL", false, false).
		Where("created_at < ?", createdBefore).
		Order("id asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}
