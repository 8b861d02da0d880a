// Package authentication resolves the Authorization header of a request into
// a Principal: an anonymous caller, a user, or an authorized application.
package authentication

import (
	"context"

	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
)

type Kind string

const (
	KindAnonymous   Kind = "anonymous"
	KindUser        Kind = "user"
	KindApplication Kind = "application"
)

// Principal is exactly one of anonymous, user or application. User is set
// only for KindUser and Application only for KindApplication.
type Principal struct {
	Kind        Kind
	User        *authdomain.User
	Application *appdomain.AuthorizedApplication
}

func Anonymous() Principal {
	return Principal{Kind: KindAnonymous}
}

func ForUser(user *authdomain.User) Principal {
	return Principal{Kind: KindUser, User: user}
}

func ForApplication(app *appdomain.AuthorizedApplication) Principal {
	return Principal{Kind: KindApplication, Application: app}
}

func (p Principal) IsAnonymous() bool {
	return p.Kind == "" || p.Kind == KindAnonymous
}

func (p Principal) IsApplication() bool {
	return p.Kind == KindApplication && p.Application != nil
}

func (p Principal) IsUser() bool {
	return p.Kind == KindUser && p.User != nil
}

func (p Principal) IsStaff() bool {
	return p.IsUser() && p.User.IsStaff
}

// Subject is the authorization subject for the principal.
func (p Principal) Subject() string {
	switch {
	case p.IsStaff():
		return "staff"
	case p.IsUser():
		return string(KindUser)
	case p.IsApplication():
		return string(KindApplication)
	default:
		return string(KindAnonymous)
	}
}

// ID identifies the principal in logs; empty for anonymous callers.
func (p Principal) ID() string {
	switch {
	case p.IsUser():
		return p.User.ID.String()
	case p.IsApplication():
		return p.Application.ID.String()
	default:
		return ""
	}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the anonymous principal when none was stored.
func FromContext(ctx context.Context) Principal {
	if ctx == nil {
		return Anonymous()
	}
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
