package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kpi/internal/application/domain"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/smallbiznis/kpi/pkg/db/option"
	"github.com/smallbiznis/kpi/pkg/randstr"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  repository.Repository[domain.AuthorizedApplication]
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.AuthorizedApplication]
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("application.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.AuthorizedApplication, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > domain.NameMaxLength {
		return nil, domain.ErrInvalidName
	}

	key := req.Key
	if key == "" {
		generated, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		key = generated
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	app := &domain.AuthorizedApplication{
		ID:        s.genID.Generate(),
		Name:      name,
		Key:       key,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrKeyExists
		}
		return nil, err
	}

	s.log.Info("authorized application created",
		zap.String("application_id", app.ID.String()),
		zap.String("name", app.Name),
	)
	return app, nil
}

func (s *Service) FindByKey(ctx context.Context, key string) (*domain.AuthorizedApplication, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	app, err := s.repo.FindOne(ctx, &domain.AuthorizedApplication{Key: key})
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}
	return app, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.AuthorizedApplication, error) {
	return s.repo.Find(ctx, &domain.AuthorizedApplication{}, option.OrderBy("id asc"))
}

// GenerateKey returns a fresh application key.
func GenerateKey() (string, error) {
	return randstr.Generate(domain.KeyLength, domain.KeyAlphabet)
}

// ValidateKey checks length and alphabet.
func ValidateKey(key string) error {
	if utf8.RuneCountInString(key) != domain.KeyLength || !randstr.Only(key, domain.KeyAlphabet) {
		return domain.ErrInvalidKey
	}
	return nil
}
