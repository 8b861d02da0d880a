package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*User, error)
	GetAccount(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id snowflake.ID) (*User, error)
	UpdateAccount(ctx context.Context, username string, req UpdateAccountRequest) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// ResolveToken returns the owner of a bearer token key, or ErrTokenNotFound.
	ResolveToken(ctx context.Context, key string) (*User, error)
	TokenForUser(ctx context.Context, userID snowflake.ID) (*Token, error)
}

type CreateAccountRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	IsActive  *bool
	IsStaff   bool
}

// UpdateAccountRequest applies only the non-nil fields.
type UpdateAccountRequest struct {
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
	Email     *string
	IsActive  *bool
}
