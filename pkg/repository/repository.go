package repository

import (
	"context"

	"github.com/smallbiznis/kpi/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic GORM-backed store for a single model type.
// FindOne returns nil, nil when no row matches.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Delete(ctx context.Context, query *T) (int64, error)
	Count(ctx context.Context, query *T) (int64, error)
}
