package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/kpi/internal/config"
	"github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/smallbiznis/kpi/pkg/db/option"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     repository.Repository[domain.Tag]
	Settings *config.SettingsHolder
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     repository.Repository[domain.Tag]
	settings *config.SettingsHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("tag.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		settings: p.Settings,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	afterID, err := pagination.DecodeCursorID(req.PageToken)
	if err != nil {
		return domain.ListResponse{}, err
	}
	settings := s.settings.Get()
	limit := req.Limit(settings.PageSize, settings.MaxPageSize)

	items, err := s.repo.Find(ctx, &domain.Tag{}, option.ApplyCursor(afterID, limit))
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(t *domain.Tag) string {
		return t.ID.String()
	})
	return domain.ListResponse{PageInfo: *pageInfo, Tags: items}, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	if name == "" {
		return nil, domain.ErrNotFound
	}
	tag, err := s.repo.FindOne(ctx, &domain.Tag{Name: name})
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, domain.ErrNotFound
	}
	return tag, nil
}

func (s *Service) Ensure(ctx context.Context, names []string) ([]domain.Tag, error) {
	names, err := normalizeNames(names)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []domain.Tag{}, nil
	}

	existing, err := s.repo.Find(ctx, &domain.Tag{}, option.Where("name IN ?", names))
	if err != nil {
		return nil, err
	}
	byName := make(map[string]domain.Tag, len(existing))
	for _, t := range existing {
		byName[t.Name] = *t
	}

	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			tags = append(tags, t)
			continue
		}
		created, err := s.create(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *created)
	}
	return tags, nil
}

func (s *Service) create(ctx context.Context, name string) (*domain.Tag, error) {
	tag := &domain.Tag{
		ID:   s.genID.Generate(),
		Name: name,
		Slug: slug.Make(name),
	}
	if err := s.repo.Create(ctx, tag); err != nil {
		// Lost a race with a concurrent writer.
		if db.IsDuplicateKeyErr(err) {
			return s.GetByName(ctx, name)
		}
		return nil, err
	}
	s.log.Debug("tag created", zap.String("name", name), zap.String("slug", tag.Slug))
	return tag, nil
}

func normalizeNames(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > domain.NameMaxLength {
			return nil, domain.ErrInvalidName
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
