package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*AuthorizedApplication, error)
	// FindByKey returns ErrNotFound when no application holds key.
	FindByKey(ctx context.Context, key string) (*AuthorizedApplication, error)
	List(ctx context.Context) ([]*AuthorizedApplication, error)
}

// CreateRequest generates a key when Key is empty.
type CreateRequest struct {
	Name string
	Key  string
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidKey  = errors.New("invalid_key")
	ErrKeyExists   = errors.New("key_exists")
	ErrNotFound    = errors.New("not_found")
)
