package authentication

import (
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/config"
	"go.uber.org/fx"
)

// Set holds the authenticator chains used by the HTTP endpoints.
type Set struct {
	// Optional accepts user tokens and lets anonymous callers through.
	Optional Authenticator
	// User requires a user token.
	User Authenticator
	// Staff requires a staff user token.
	Staff Authenticator
	// Application accepts an application key, falling back to a user token.
	Application Authenticator
}

type Params struct {
	fx.In

	Config       config.Config
	Users        authdomain.Service
	Applications appdomain.Service
}

func NewSet(p Params) *Set {
	return Build(p.Config.TokenKeyword, p.Users, p.Applications)
}

func Build(keyword string, users UserTokenStore, apps ApplicationStore) *Set {
	token := NewTokenAuthenticator(keyword, users)
	required := NewRequiredTokenAuthenticator(keyword, token)
	return &Set{
		Optional:    token,
		User:        required,
		Staff:       NewStaffTokenAuthenticator(required),
		Application: FirstOf(NewApplicationTokenAuthenticator(keyword, apps), token),
	}
}

var Module = fx.Module("authentication",
	fx.Provide(NewSet),
)
