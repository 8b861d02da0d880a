// Package domain defines user-owned collections of survey assets.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
)

const (
	UIDPrefix     = "c"
	NameMaxLength = 255
)

type Collection struct {
	ID           snowflake.ID     `gorm:"primaryKey"`
	UID          string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name         string           `gorm:"type:varchar(255);not null;default:''"`
	OwnerID      snowflake.ID     `gorm:"not null;index"`
	Owner        *authdomain.User `gorm:"foreignKey:OwnerID"`
	Tags         []tagdomain.Tag  `gorm:"many2many:collection_tags;"`
	DateCreated  time.Time        `gorm:"not null"`
	DateModified time.Time        `gorm:"not null"`
}

func (Collection) TableName() string { return "collections" }

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Collections []*Collection
}

type CreateRequest struct {
	Name string
	Tags []string
}

// UpdateRequest applies only the non-nil fields.
type UpdateRequest struct {
	Name *string
	Tags *[]string
}

// Service methods are scoped to ownerID: collections of other users are
// reported as ErrNotFound.
type Service interface {
	List(ctx context.Context, ownerID snowflake.ID, req ListRequest) (ListResponse, error)
	Create(ctx context.Context, ownerID snowflake.ID, req CreateRequest) (*Collection, error)
	Get(ctx context.Context, ownerID snowflake.ID, uid string) (*Collection, error)
	Update(ctx context.Context, ownerID snowflake.ID, uid string, req UpdateRequest) (*Collection, error)
	ListByTag(ctx context.Context, ownerID snowflake.ID, tagID snowflake.ID) ([]*Collection, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]*Collection, error)
}

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidName  = errors.New("invalid_name")
	ErrNotFound     = errors.New("not_found")
)
