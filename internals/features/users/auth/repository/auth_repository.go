package repository

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "sfformation_backend/internals/features/users/auth/model"
	userModel "sfformation_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetFirstLoginPassword stores the chosen hash and closes the first-login window.
func SetFirstLoginPassword(ctx context.Context, db *gorm.DB, userID uuid.UUID, hash string) (int64, error) {
	res := db.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id = ? AND first_login_done = ?", userID, false).
		Updates(map[string]any{
			"password_hash":    hash,
			"first_login_done": true,
		})
	return res.RowsAffected, res.Error
}

/* ====================== BLACKLIST TOKEN ====================== */

func tokenDigest(rawToken, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(rawToken))
	return hex.EncodeToString(m.Sum(nil))
}

// BlacklistToken is idempotent: a second logout only moves the expiry.
func BlacklistToken(ctx context.Context, db *gorm.DB, rawToken, secret string, expiresAt time.Time) error {
	row := authModel.TokenBlacklistModel{
		TokenBlacklistDigest: tokenDigest(rawToken, secret),
		TokenBlacklistExpAt:  expiresAt.UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_blacklist_digest"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_blacklist_exp_at"}),
	}).Create(&row).Error
}

func IsBlacklisted(ctx context.Context, db *gorm.DB, rawToken, secret string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&authModel.TokenBlacklistModel{}).
		Where("token_blacklist_digest = ? AND token_blacklist_exp_at > ?", tokenDigest(rawToken, secret), time.Now().UTC()).
		Count(&n).Error
	return n > 0, err
}

// CleanupExpiredBlacklist hard-deletes rows expired before the cutoff.
func CleanupExpiredBlacklist(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("token_blacklist_exp_at < ?", before.UTC()).
		Delete(&authModel.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}
