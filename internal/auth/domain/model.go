// Package domain contains core types for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a person who owns survey assets and collections.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Username     string       `gorm:"type:varchar(30);not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:text;not null"`
	FirstName    string       `gorm:"type:varchar(150);not null;default:''"`
	LastName     string       `gorm:"type:varchar(150);not null;default:''"`
	Email        string       `gorm:"type:varchar(254);not null;default:''"`
	IsActive     bool         `gorm:"not null;default:true"`
	IsStaff      bool         `gorm:"not null;default:false"`
	DateJoined   time.Time    `gorm:"not null"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// Token is the per-user bearer credential presented as "Token <key>".
type Token struct {
	Key       string       `gorm:"type:varchar(40);primaryKey"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (Token) TableName() string { return "user_tokens" }
