package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

type Repository interface {
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	CreateToken(ctx context.Context, token *Token) error
	FindToken(ctx context.Context, key string) (*Token, error)
	FindTokenByUser(ctx context.Context, userID snowflake.ID) (*Token, error)
}
