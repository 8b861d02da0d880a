package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/auth/password"
	"github.com/smallbiznis/kpi/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	tokenBytes        = 20
	maxNameLength     = 150
	maxPasswordLength = 128
)

var usernamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]+$`)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		validate: validator.New(),
	}
}

func (s *Service) CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	email, err := s.normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validateName(req.FirstName, domain.ErrInvalidFirstName); err != nil {
		return nil, err
	}
	if err := validateName(req.LastName, domain.ErrInvalidLastName); err != nil {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	key, err := newTokenKey()
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		IsActive:     isActive,
		IsStaff:      req.IsStaff,
		DateJoined:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Transaction(ctx, func(repo domain.Repository) error {
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		return repo.CreateToken(ctx, &domain.Token{
			Key:       key,
			UserID:    user.ID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user account created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Bool("is_staff", user.IsStaff),
	)
	return user, nil
}

func (s *Service) GetAccount(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByUsername(ctx, username)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) UpdateAccount(ctx context.Context, username string, req domain.UpdateAccountRequest) (*domain.User, error) {
	user, err := s.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Username != nil && *req.Username != user.Username {
		next := strings.TrimSpace(*req.Username)
		if err := validateUsername(next); err != nil {
			return nil, err
		}
		exists, err := s.UsernameExists(ctx, next)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUserExists
		}
		fields["username"] = next
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hashed, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hashed
	}
	if req.FirstName != nil {
		if err := validateName(*req.FirstName, domain.ErrInvalidFirstName); err != nil {
			return nil, err
		}
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		if err := validateName(*req.LastName, domain.ErrInvalidLastName); err != nil {
			return nil, err
		}
		fields["last_name"] = *req.LastName
	}
	if req.Email != nil {
		email, err := s.normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		fields["email"] = email
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return user, nil
	}

	fields["updated_at"] = s.clock.Now()
	if err := s.repo.UpdateFields(ctx, user.ID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, user.ID)
}

func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) ResolveToken(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrTokenNotFound
	}
	token, err := s.repo.FindToken(ctx, key)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, token.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	return user, err
}

func (s *Service) TokenForUser(ctx context.Context, userID snowflake.ID) (*domain.Token, error) {
	return s.repo.FindTokenByUser(ctx, userID)
}

func (s *Service) normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}
	if err := s.validate.Var(email, "email,max=254"); err != nil {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func validateUsername(username string) error {
	if len(username) > domain.UsernameMaxLength || !usernamePattern.MatchString(username) {
		return domain.ErrInvalidUsername
	}
	return nil
}

func validatePassword(pw string) error {
	if pw == "" || len(pw) > maxPasswordLength {
		return domain.ErrInvalidPassword
	}
	return nil
}

func validateName(name string, invalid error) error {
	if len(name) > maxNameLength {
		return invalid
	}
	return nil
}

func newTokenKey() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
