package model

import "time"

// TokenBlacklistModel keeps the HMAC digest of a logged-out JWT until the
// token would have expired on its own. The raw token is never stored.
type TokenBlacklistModel struct {
	TokenBlacklistID     uint      `gorm:"column:token_blacklist_id;primaryKey" json:"token_blacklist_id"`
	TokenBlacklistDigest string    `gorm:"column:token_blacklist_digest;size:64;not null;uniqueIndex:uq_token_blacklist_digest" json:"-"`
	TokenBlacklistExpAt  time.Time `gorm:"column:token_blacklist_exp_at;not null;index:idx_token_blacklist_exp_at" json:"token_blacklist_exp_at"`
	TokenBlacklistAt     time.Time `gorm:"column:token_blacklist_at;autoCreateTime" json:"token_blacklist_at"`
}

func (TokenBlacklistModel) TableName() string {
	return "token_blacklist"
}
