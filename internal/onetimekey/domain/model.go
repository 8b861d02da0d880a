// Package domain defines single-use login keys issued to users by an
// authorized application.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type OneTimeAuthenticationKey struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"not null;index"`
	Key       string       `gorm:"type:varchar(60);not null;uniqueIndex"`
	Expiry    time.Time    `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (OneTimeAuthenticationKey) TableName() string { return "one_time_authentication_keys" }

// Expired reports whether the key can no longer be redeemed at now.
func (k OneTimeAuthenticationKey) Expired(now time.Time) bool {
	return !now.Before(k.Expiry)
}

type Service interface {
	Issue(ctx context.Context, userID snowflake.ID) (*OneTimeAuthenticationKey, error)
	// Redeem consumes key. Unknown, already used and expired keys all fail
	// with ErrInvalidKey.
	Redeem(ctx context.Context, key string) (*OneTimeAuthenticationKey, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

var (
	ErrInvalidKey  = errors.New("invalid_key")
	ErrInvalidUser = errors.New("invalid_user")
)
