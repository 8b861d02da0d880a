// Package domain defines global, name-keyed tags shared by survey assets and
// collections.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
)

const NameMaxLength = 100

type Tag struct {
	ID   snowflake.ID `gorm:"primaryKey"`
	Name string       `gorm:"type:varchar(255);not null;uniqueIndex"`
	Slug string       `gorm:"type:varchar(255);not null"`
}

func (Tag) TableName() string { return "tags" }

// Names returns the tag names in order.
func Names(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Tags []*Tag
}

type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByName(ctx context.Context, name string) (*Tag, error)
	// Ensure returns tags for names, creating the missing ones. Blank and
	// repeated names are dropped.
	Ensure(ctx context.Context, names []string) ([]Tag, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("not_found")
)
