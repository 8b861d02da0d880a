package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/kpi/internal/authentication"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectSurveyAsset = "survey_asset"
	ObjectCollection  = "collection"
	ObjectTag         = "tag"
	ObjectUser        = "user"
	ObjectUserAccount = "user_account"
	ObjectOneTimeKey  = "one_time_key"
)

const (
	ActionList     = "list"
	ActionCreate   = "create"
	ActionRetrieve = "retrieve"
	ActionUpdate   = "update"
)

const (
	SubjectAnonymous   = "anonymous"
	SubjectUser        = "user"
	SubjectStaff       = "staff"
	SubjectApplication = "application"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, principal authentication.Principal, object string, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := principal.Subject()
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("principal_id", principal.ID()),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Authorized applications provision users and hand out login keys.
		{SubjectApplication, ObjectUserAccount, ActionCreate},
		{SubjectApplication, ObjectOneTimeKey, ActionCreate},

		// Staff administer accounts.
		{SubjectStaff, ObjectUserAccount, ActionCreate},
		{SubjectStaff, ObjectUserAccount, ActionRetrieve},
		{SubjectStaff, ObjectUserAccount, ActionUpdate},
		{SubjectStaff, ObjectUser, ActionRetrieve},

		// Users work with their own resources.
		{SubjectUser, ObjectSurveyAsset, "*"},
		{SubjectUser, ObjectCollection, "*"},
		{SubjectUser, ObjectTag, "*"},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	if _, err := enforcer.AddGroupingPolicy(SubjectStaff, SubjectUser); err != nil {
		return err
	}
	return nil
}
