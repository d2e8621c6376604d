package repository

import (
	"context"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository stores email OTP codes and password reset tokens
type TokenRepository struct {
	DB *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

func (r *TokenRepository) WithTx(tx *gorm.DB) *TokenRepository {
	return &TokenRepository{DB: tx}
}

// ReplaceVerification drops any earlier codes for the user and stores t
func (r *TokenRepository) ReplaceVerification(ctx context.Context, t *models.EmailVerificationToken) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("user_id = ?", t.UserID).Delete(&models.EmailVerificationToken{}).Error; err != nil {
		return err
	}
	return db.Create(t).Error
}

// LatestVerification returns the most recently issued code for the user
func (r *TokenRepository) LatestVerification(ctx context.Context, userID uuid.UUID) (*models.EmailVerificationToken, error) {
	var t models.EmailVerificationToken
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) DeleteVerifications(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.EmailVerificationToken{}).Error
}

// ReplaceReset drops any earlier reset tokens for the user and stores t
func (r *TokenRepository) ReplaceReset(ctx context.Context, t *models.PasswordResetToken) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("user_id = ?", t.UserID).Delete(&models.PasswordResetToken{}).Error; err != nil {
		return err
	}
	return db.Create(t).Error
}

func (r *TokenRepository) FindReset(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) DeleteResets(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
}
