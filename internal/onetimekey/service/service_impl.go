package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/internal/config"
	"github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/pkg/randstr"
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
	Repo     repository.Repository[domain.OneTimeAuthenticationKey]
	Clock    clock.Clock
	Settings *config.SettingsHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     repository.Repository[domain.OneTimeAuthenticationKey]
	clock    clock.Clock
	settings *config.SettingsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("onetimekey.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		settings: p.Settings,
	}
}

func (s *Service) Issue(ctx context.Context, userID snowflake.ID) (*domain.OneTimeAuthenticationKey, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	key, err := randstr.Generate(appdomain.KeyLength, appdomain.KeyAlphabet)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	otk := &domain.OneTimeAuthenticationKey{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Key:       key,
		Expiry:    now.Add(s.settings.Get().OneTimeKeyTTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, otk); err != nil {
		return nil, err
	}

	s.log.Info("one-time key issued",
		zap.String("user_id", userID.String()),
		zap.Time("expiry", otk.Expiry),
	)
	return otk, nil
}

func (s *Service) Redeem(ctx context.Context, key string) (*domain.OneTimeAuthenticationKey, error) {
	if key == "" {
		return nil, domain.ErrInvalidKey
	}

	var redeemed *domain.OneTimeAuthenticationKey
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTrx(tx)
		otk, err := repo.FindOne(ctx, &domain.OneTimeAuthenticationKey{Key: key})
		if err != nil {
			return err
		}
		if otk == nil {
			return domain.ErrInvalidKey
		}

		deleted, err := repo.Delete(ctx, &domain.OneTimeAuthenticationKey{ID: otk.ID})
		if err != nil {
			return err
		}
		// A concurrent redemption already consumed it.
		if deleted == 0 {
			return domain.ErrInvalidKey
		}
		if !otk.Expired(s.clock.Now()) {
			redeemed = otk
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if redeemed == nil {
		s.log.Debug("expired one-time key discarded")
		return nil, domain.ErrInvalidKey
	}
	return redeemed, nil
}

func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	tx := s.db.WithContext(ctx).
		Where("expiry <= ?", s.clock.Now()).
		Delete(&domain.OneTimeAuthenticationKey{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected > 0 {
		s.log.Info("expired one-time keys purged", zap.Int64("count", tx.RowsAffected))
	}
	return tx.RowsAffected, nil
}
