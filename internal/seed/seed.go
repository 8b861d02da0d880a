// Package seed bootstraps the records an operator creates outside the API:
// staff accounts and authorized applications.
package seed

import (
	"context"
	"errors"
	"strings"

	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"go.uber.org/zap"
)

var ErrPasswordRequired = errors.New("password_required")

type Seeder struct {
	log    *zap.Logger
	users  authdomain.Service
	apps   appdomain.Service
	audits auditdomain.Service
}

func New(log *zap.Logger, users authdomain.Service, apps appdomain.Service, audits auditdomain.Service) *Seeder {
	return &Seeder{log: log.Named("seed"), users: users, apps: apps, audits: audits}
}

// EnsureStaff returns the account named username, creating it as staff when
// missing. An existing account is left untouched.
func (s *Seeder) EnsureStaff(ctx context.Context, username, password string) (*authdomain.User, bool, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.GetAccount(ctx, username)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, false, err
	}
	if password == "" {
		return nil, false, ErrPasswordRequired
	}

	user, err = s.users.CreateAccount(ctx, authdomain.CreateAccountRequest{
		Username: username,
		Password: password,
		IsStaff:  true,
	})
	if err != nil {
		return nil, false, err
	}
	s.log.Info("staff account created", zap.String("username", user.Username))
	s.audit(ctx, auditdomain.ActionUserAccountCreate, auditdomain.TargetTypeUser, user.ID.String(), map[string]any{
		"username": user.Username,
		"is_staff": true,
	})
	return user, true, nil
}

// CreateApplication registers an application. An empty key is generated.
func (s *Seeder) CreateApplication(ctx context.Context, name, key string) (*appdomain.AuthorizedApplication, error) {
	app, err := s.apps.Create(ctx, appdomain.CreateRequest{
		Name: strings.TrimSpace(name),
		Key:  key,
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, auditdomain.ActionApplicationCreate, auditdomain.TargetTypeApplication, app.ID.String(), map[string]any{
		"name": app.Name,
		"key":  app.Key,
	})
	return app, nil
}

// Token returns the bearer token of user.
func (s *Seeder) Token(ctx context.Context, user *authdomain.User) (string, error) {
	token, err := s.users.TokenForUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return token.Key, nil
}

func (s *Seeder) audit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.audits == nil {
		return
	}
	actorID := "kpi-admin"
	_ = s.audits.AuditLog(ctx, auditdomain.ActorTypeSystem, &actorID, action, targetType, &targetID, metadata)
}
