package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"gorm.io/datatypes"
)

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Assets []*SurveyAsset
}

type CreateRequest struct {
	Name          string
	Settings      datatypes.JSON
	Content       datatypes.JSON
	CollectionUID *string
	Tags          []string
}

// UpdateRequest applies only the non-nil fields. With CollectionSet and a
// nil CollectionUID the asset leaves its collection.
type UpdateRequest struct {
	Name          *string
	Settings      *datatypes.JSON
	Content       *datatypes.JSON
	CollectionSet bool
	CollectionUID *string
	Tags          *[]string
}

// Service methods are scoped to ownerID: assets of other users are reported
// as ErrNotFound.
type Service interface {
	List(ctx context.Context, ownerID snowflake.ID, req ListRequest) (ListResponse, error)
	Create(ctx context.Context, ownerID snowflake.ID, req CreateRequest) (*SurveyAsset, error)
	Get(ctx context.Context, ownerID snowflake.ID, uid string) (*SurveyAsset, error)
	Update(ctx context.Context, ownerID snowflake.ID, uid string, req UpdateRequest) (*SurveyAsset, error)
	ListByTag(ctx context.Context, ownerID snowflake.ID, tagID snowflake.ID) ([]*SurveyAsset, error)
	ListByCollection(ctx context.Context, collectionID snowflake.ID) ([]*SurveyAsset, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]*SurveyAsset, error)
}

var (
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidContent    = errors.New("invalid_content")
	ErrInvalidSettings   = errors.New("invalid_settings")
	ErrInvalidCollection = errors.New("invalid_collection")
	ErrNotFound          = errors.New("not_found")
)
