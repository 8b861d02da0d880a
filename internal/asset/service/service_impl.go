package service

import (
	"context"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/kpi/internal/asset/domain"
	"github.com/smallbiznis/kpi/internal/clock"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	"github.com/smallbiznis/kpi/internal/config"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/pkg/db/option"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        repository.Repository[domain.SurveyAsset]
	Versions    repository.Repository[domain.AssetVersion]
	Collections collectiondomain.Service
	Tags        tagdomain.Service
	Clock       clock.Clock
	Settings    *config.SettingsHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        repository.Repository[domain.SurveyAsset]
	versions    repository.Repository[domain.AssetVersion]
	collections collectiondomain.Service
	tags        tagdomain.Service
	clock       clock.Clock
	settings    *config.SettingsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("asset.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		versions:    p.Versions,
		collections: p.Collections,
		tags:        p.Tags,
		clock:       p.Clock,
		settings:    p.Settings,
	}
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID, req domain.ListRequest) (domain.ListResponse, error) {
	if ownerID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidOwner
	}
	afterID, err := pagination.DecodeCursorID(req.PageToken)
	if err != nil {
		return domain.ListResponse{}, err
	}
	settings := s.settings.Get()
	limit := req.Limit(settings.PageSize, settings.MaxPageSize)

	items, err := s.repo.Find(ctx, &domain.SurveyAsset{OwnerID: ownerID},
		option.Preload("Owner"),
		option.Preload("Collection"),
		option.Preload("Tags"),
		option.ApplyCursor(afterID, limit),
	)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(a *domain.SurveyAsset) string {
		return a.ID.String()
	})
	return domain.ListResponse{PageInfo: *pageInfo, Assets: items}, nil
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreateRequest) (*domain.SurveyAsset, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if len(req.Content) == 0 || !json.Valid(req.Content) {
		return nil, domain.ErrInvalidContent
	}
	if len(req.Settings) > 0 && !json.Valid(req.Settings) {
		return nil, domain.ErrInvalidSettings
	}

	collectionID, err := s.resolveCollection(ctx, ownerID, req.CollectionUID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.Ensure(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	asset := &domain.SurveyAsset{
		ID:           s.genID.Generate(),
		UID:          domain.UIDPrefix + ulid.Make().String(),
		Name:         req.Name,
		OwnerID:      ownerID,
		CollectionID: collectionID,
		AssetType:    domain.AssetTypeSurvey,
		Settings:     req.Settings,
		Content:      req.Content,
		Tags:         tags,
		DateCreated:  now,
		DateModified: now,
	}
	if len(asset.Settings) == 0 {
		asset.Settings = datatypes.JSON("{}")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTrx(tx).Create(ctx, asset); err != nil {
			return err
		}
		version := asset.Snapshot(s.genID.Generate(), now)
		return s.versions.WithTrx(tx).Create(ctx, &version)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("survey asset created",
		zap.String("asset_uid", asset.UID),
		zap.String("owner_id", ownerID.String()),
	)
	return s.Get(ctx, ownerID, asset.UID)
}

func (s *Service) Get(ctx context.Context, ownerID snowflake.ID, uid string) (*domain.SurveyAsset, error) {
	if ownerID == 0 || uid == "" {
		return nil, domain.ErrNotFound
	}
	asset, err := s.repo.FindOne(ctx, &domain.SurveyAsset{OwnerID: ownerID, UID: uid},
		option.Preload("Owner"),
		option.Preload("Collection"),
		option.Preload("Tags"),
	)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrNotFound
	}

	count, err := s.versions.Count(ctx, &domain.AssetVersion{AssetID: asset.ID})
	if err != nil {
		return nil, err
	}
	asset.VersionCount = count
	return asset, nil
}

func (s *Service) Update(ctx context.Context, ownerID snowflake.ID, uid string, req domain.UpdateRequest) (*domain.SurveyAsset, error) {
	asset, err := s.Get(ctx, ownerID, uid)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fields := map[string]any{"date_modified": now}
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
		fields["name"] = *req.Name
		asset.Name = *req.Name
	}
	if req.Content != nil {
		if len(*req.Content) == 0 || !json.Valid(*req.Content) {
			return nil, domain.ErrInvalidContent
		}
		fields["content"] = *req.Content
		asset.Content = *req.Content
	}
	if req.Settings != nil {
		if len(*req.Settings) > 0 && !json.Valid(*req.Settings) {
			return nil, domain.ErrInvalidSettings
		}
		settings := *req.Settings
		if len(settings) == 0 {
			settings = datatypes.JSON("{}")
		}
		fields["settings"] = settings
		asset.Settings = settings
	}
	if req.CollectionSet {
		collectionID, err := s.resolveCollection(ctx, ownerID, req.CollectionUID)
		if err != nil {
			return nil, err
		}
		fields["collection_id"] = collectionID
	}

	var tags []tagdomain.Tag
	if req.Tags != nil {
		if tags, err = s.tags.Ensure(ctx, *req.Tags); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.SurveyAsset{}).Where("id = ?", asset.ID).Updates(fields).Error; err != nil {
			return err
		}
		if req.Tags != nil {
			if err := tx.Model(&domain.SurveyAsset{ID: asset.ID}).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		version := asset.Snapshot(s.genID.Generate(), now)
		return s.versions.WithTrx(tx).Create(ctx, &version)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, uid)
}

func (s *Service) ListByTag(ctx context.Context, ownerID snowflake.ID, tagID snowflake.ID) ([]*domain.SurveyAsset, error) {
	if ownerID == 0 {
		return []*domain.SurveyAsset{}, nil
	}
	return s.repo.Find(ctx, &domain.SurveyAsset{OwnerID: ownerID},
		option.Where("id IN (?)", s.db.Table("survey_asset_tags").Select("survey_asset_id").Where("tag_id = ?", tagID)),
		option.OrderBy("id asc"),
	)
}

func (s *Service) ListByCollection(ctx context.Context, collectionID snowflake.ID) ([]*domain.SurveyAsset, error) {
	if collectionID == 0 {
		return []*domain.SurveyAsset{}, nil
	}
	return s.repo.Find(ctx, &domain.SurveyAsset{},
		option.Where("collection_id = ?", collectionID),
		option.OrderBy("id asc"),
	)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]*domain.SurveyAsset, error) {
	if ownerID == 0 {
		return []*domain.SurveyAsset{}, nil
	}
	return s.repo.Find(ctx, &domain.SurveyAsset{OwnerID: ownerID}, option.OrderBy("id asc"))
}

// resolveCollection only considers collections owned by ownerID.
func (s *Service) resolveCollection(ctx context.Context, ownerID snowflake.ID, uid *string) (*snowflake.ID, error) {
	if uid == nil {
		return nil, nil
	}
	collection, err := s.collections.Get(ctx, ownerID, *uid)
	if errors.Is(err, collectiondomain.ErrNotFound) {
		return nil, domain.ErrInvalidCollection
	}
	if err != nil {
		return nil, err
	}
	return &collection.ID, nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > domain.NameMaxLength {
		return domain.ErrInvalidName
	}
	return nil
}
