package authentication

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
)

//go:generate mockgen -source=authenticator.go -destination=mocks/mock_authenticator.go -package=mocks

const DefaultKeyword = "Token"

// Authenticator inspects the raw Authorization header. A nil error with an
// anonymous principal means the authenticator did not apply.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (Principal, error)
}

type UserTokenStore interface {
	ResolveToken(ctx context.Context, key string) (*authdomain.User, error)
}

type ApplicationStore interface {
	FindByKey(ctx context.Context, key string) (*appdomain.AuthorizedApplication, error)
}

// parseHeader extracts the credential following keyword. ok is false when
// the header is absent or carries a different scheme.
func parseHeader(header, keyword string) (key string, ok bool, err error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], keyword) {
		return "", false, nil
	}
	switch {
	case len(parts) == 1:
		return "", true, ErrNoCredentials
	case len(parts) > 2:
		return "", true, ErrTokenHasSpaces
	}
	if !utf8.ValidString(parts[1]) {
		return "", true, ErrTokenInvalidUTF8
	}
	return parts[1], true, nil
}

func keywordOrDefault(keyword string) string {
	if keyword == "" {
		return DefaultKeyword
	}
	return keyword
}

// TokenAuthenticator resolves per-user bearer tokens. A missing header
// yields the anonymous principal.
type TokenAuthenticator struct {
	Keyword string
	Users   UserTokenStore
}

func NewTokenAuthenticator(keyword string, users UserTokenStore) *TokenAuthenticator {
	return &TokenAuthenticator{Keyword: keywordOrDefault(keyword), Users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, header string) (Principal, error) {
	key, ok, err := parseHeader(header, keywordOrDefault(a.Keyword))
	if err != nil {
		return Anonymous(), err
	}
	if !ok {
		return Anonymous(), nil
	}

	user, err := a.Users.ResolveToken(ctx, key)
	if err != nil {
		if errors.Is(err, authdomain.ErrTokenNotFound) {
			return Anonymous(), ErrInvalidToken
		}
		return Anonymous(), err
	}
	if !user.IsActive {
		return Anonymous(), ErrUserInactive
	}
	return ForUser(user), nil
}

// ApplicationTokenAuthenticator resolves authorized application keys.
type ApplicationTokenAuthenticator struct {
	Keyword      string
	Applications ApplicationStore
}

func NewApplicationTokenAuthenticator(keyword string, apps ApplicationStore) *ApplicationTokenAuthenticator {
	return &ApplicationTokenAuthenticator{Keyword: keywordOrDefault(keyword), Applications: apps}
}

func (a *ApplicationTokenAuthenticator) Authenticate(ctx context.Context, header string) (Principal, error) {
	key, ok, err := parseHeader(header, keywordOrDefault(a.Keyword))
	if err != nil {
		return Anonymous(), err
	}
	if !ok {
		return Anonymous(), nil
	}

	app, err := a.Applications.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, appdomain.ErrNotFound) {
			return Anonymous(), ErrInvalidToken
		}
		return Anonymous(), err
	}
	return ForApplication(app), nil
}

// RequiredTokenAuthenticator rejects requests without a header in the
// expected scheme before delegating.
type RequiredTokenAuthenticator struct {
	Keyword string
	Next    Authenticator
}

func NewRequiredTokenAuthenticator(keyword string, next Authenticator) *RequiredTokenAuthenticator {
	return &RequiredTokenAuthenticator{Keyword: keywordOrDefault(keyword), Next: next}
}

func (a *RequiredTokenAuthenticator) Authenticate(ctx context.Context, header string) (Principal, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], keywordOrDefault(a.Keyword)) {
		return Anonymous(), ErrMissingHeader
	}
	return a.Next.Authenticate(ctx, header)
}

// StaffTokenAuthenticator accepts only principals carrying a staff user.
type StaffTokenAuthenticator struct {
	Next Authenticator
}

func NewStaffTokenAuthenticator(next Authenticator) *StaffTokenAuthenticator {
	return &StaffTokenAuthenticator{Next: next}
}

func (a *StaffTokenAuthenticator) Authenticate(ctx context.Context, header string) (Principal, error) {
	p, err := a.Next.Authenticate(ctx, header)
	if err != nil {
		return Anonymous(), err
	}
	if !p.IsStaff() {
		return Anonymous(), ErrNotStaff
	}
	return p, nil
}

type firstOf []Authenticator

// FirstOf tries each authenticator in order and returns the first
// non-anonymous principal. It moves on after ErrInvalidToken; any other
// error stops the chain.
func FirstOf(authenticators ...Authenticator) Authenticator {
	return firstOf(authenticators)
}

func (f firstOf) Authenticate(ctx context.Context, header string) (Principal, error) {
	var invalid error
	for _, a := range f {
		p, err := a.Authenticate(ctx, header)
		if errors.Is(err, ErrInvalidToken) {
			invalid = err
			continue
		}
		if err != nil {
			return Anonymous(), err
		}
		if !p.IsAnonymous() {
			return p, nil
		}
	}
	if invalid != nil {
		return Anonymous(), invalid
	}
	return Anonymous(), nil
}
