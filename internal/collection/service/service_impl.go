package service

import (
	"context"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/internal/collection/domain"
	"github.com/smallbiznis/kpi/internal/config"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/pkg/db/option"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     repository.Repository[domain.Collection]
	Tags     tagdomain.Service
	Clock    clock.Clock
	Settings *config.SettingsHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     repository.Repository[domain.Collection]
	tags     tagdomain.Service
	clock    clock.Clock
	settings *config.SettingsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("collection.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		tags:     p.Tags,
		clock:    p.Clock,
		settings: p.Settings,
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

	items, err := s.repo.Find(ctx, &domain.Collection{OwnerID: ownerID},
		option.Preload("Owner"),
		option.Preload("Tags"),
		option.ApplyCursor(afterID, limit),
	)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(c *domain.Collection) string {
		return c.ID.String()
	})
	return domain.ListResponse{PageInfo: *pageInfo, Collections: items}, nil
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreateRequest) (*domain.Collection, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	tags, err := s.tags.Ensure(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	collection := &domain.Collection{
		ID:           s.genID.Generate(),
		UID:          domain.UIDPrefix + ulid.Make().String(),
		Name:         req.Name,
		OwnerID:      ownerID,
		Tags:         tags,
		DateCreated:  now,
		DateModified: now,
	}
	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, err
	}

	s.log.Info("collection created",
		zap.String("collection_uid", collection.UID),
		zap.String("owner_id", ownerID.String()),
	)
	return s.Get(ctx, ownerID, collection.UID)
}

func (s *Service) Get(ctx context.Context, ownerID snowflake.ID, uid string) (*domain.Collection, error) {
	if ownerID == 0 || uid == "" {
		return nil, domain.ErrNotFound
	}
	collection, err := s.repo.FindOne(ctx, &domain.Collection{OwnerID: ownerID, UID: uid},
		option.Preload("Owner"),
		option.Preload("Tags"),
	)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}
	return collection, nil
}

func (s *Service) Update(ctx context.Context, ownerID snowflake.ID, uid string, req domain.UpdateRequest) (*domain.Collection, error) {
	collection, err := s.Get(ctx, ownerID, uid)
	if err != nil {
		return nil, err
	}

	var tags []tagdomain.Tag
	if req.Tags != nil {
		if tags, err = s.tags.Ensure(ctx, *req.Tags); err != nil {
			return nil, err
		}
	}

	fields := map[string]any{"date_modified": s.clock.Now()}
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
		fields["name"] = *req.Name
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Collection{}).Where("id = ?", collection.ID).Updates(fields).Error; err != nil {
			return err
		}
		if req.Tags != nil {
			if err := tx.Model(collection).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, uid)
}

func (s *Service) ListByTag(ctx context.Context, ownerID snowflake.ID, tagID snowflake.ID) ([]*domain.Collection, error) {
	if ownerID == 0 {
		return []*domain.Collection{}, nil
	}
	return s.repo.Find(ctx, &domain.Collection{OwnerID: ownerID},
		option.Where("id IN (?)", s.db.Table("collection_tags").Select("collection_id").Where("tag_id = ?", tagID)),
		option.OrderBy("id asc"),
	)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]*domain.Collection, error) {
	if ownerID == 0 {
		return []*domain.Collection{}, nil
	}
	return s.repo.Find(ctx, &domain.Collection{OwnerID: ownerID}, option.OrderBy("id asc"))
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > domain.NameMaxLength {
		return domain.ErrInvalidName
	}
	return nil
}
