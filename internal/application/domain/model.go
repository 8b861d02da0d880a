// Package domain defines authorized applications, the third-party clients
// allowed to create users and issue one-time keys.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KeyLength     = 60
	KeyAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"
	NameMaxLength = 50
)

// AuthorizedApplication is immutable once created.
type AuthorizedApplication struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:varchar(50);not null"`
	Key       string       `gorm:"type:varchar(60);not null;uniqueIndex"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (AuthorizedApplication) TableName() string { return "authorized_applications" }
