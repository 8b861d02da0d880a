package authentication_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/authentication"
	"github.com/smallbiznis/kpi/internal/authentication/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenAuthenticatorHeaderParsing(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserTokenStore(ctrl)
	a := authentication.NewTokenAuthenticator("Token", users)
	ctx := context.Background()

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"absent", "", nil},
		{"other scheme", "Bearer abc", nil},
		{"keyword only", "Token", authentication.ErrNoCredentials},
		{"spaces", "Token abc def", authentication.ErrTokenHasSpaces},
		{"invalid utf8", "Token \xff\xfe", authentication.ErrTokenInvalidUTF8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := a.Authenticate(ctx, tc.header)
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
			assert.True(t, p.IsAnonymous())
		})
	}
}

func TestTokenAuthenticatorResolvesUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserTokenStore(ctrl)
	a := authentication.NewTokenAuthenticator("Token", users)
	ctx := context.Background()

	alice := &authdomain.User{ID: 1, Username: "alice", IsActive: true}
	users.EXPECT().ResolveToken(gomock.Any(), "good").Return(alice, nil)
	users.EXPECT().ResolveToken(gomock.Any(), "bad").Return(nil, authdomain.ErrTokenNotFound)
	users.EXPECT().ResolveToken(gomock.Any(), "gone").Return(&authdomain.User{ID: 2, IsActive: false}, nil)

	p, err := a.Authenticate(ctx, "token good")
	require.NoError(t, err)
	assert.True(t, p.IsUser())
	assert.Equal(t, "alice", p.User.Username)
	assert.Equal(t, "user", p.Subject())

	_, err = a.Authenticate(ctx, "Token bad")
	assert.ErrorIs(t, err, authentication.ErrInvalidToken)
	assert.Equal(t, "Invalid token.", err.Error())

	_, err = a.Authenticate(ctx, "Token gone")
	assert.ErrorIs(t, err, authentication.ErrUserInactive)
}

func TestTokenAuthenticatorPropagatesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserTokenStore(ctrl)
	boom := errors.New("db down")
	users.EXPECT().ResolveToken(gomock.Any(), "k").Return(nil, boom)

	_, err := authentication.NewTokenAuthenticator("", users).Authenticate(context.Background(), "Token k")
	assert.ErrorIs(t, err, boom)

	var authErr *authentication.Error
	assert.False(t, errors.As(err, &authErr))
}

func TestApplicationTokenAuthenticator(t *testing.T) {
	ctrl := gomock.NewController(t)
	apps := mocks.NewMockApplicationStore(ctrl)
	a := authentication.NewApplicationTokenAuthenticator("Token", apps)
	ctx := context.Background()

	app := &appdomain.AuthorizedApplication{ID: 9, Name: "kc"}
	apps.EXPECT().FindByKey(gomock.Any(), "appkey").Return(app, nil)
	apps.EXPECT().FindByKey(gomock.Any(), "nope").Return(nil, appdomain.ErrNotFound)

	p, err := a.Authenticate(ctx, "Token appkey")
	require.NoError(t, err)
	assert.True(t, p.IsApplication())
	assert.Nil(t, p.User)
	assert.Equal(t, "application", p.Subject())

	_, err = a.Authenticate(ctx, "Token nope")
	assert.ErrorIs(t, err, authentication.ErrInvalidToken)

	p, err = a.Authenticate(ctx, "")
	require.NoError(t, err)
	assert.True(t, p.IsAnonymous())
}

func TestRequiredTokenAuthenticator(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockAuthenticator(ctrl)
	a := authentication.NewRequiredTokenAuthenticator("Token", next)
	ctx := context.Background()

	for _, header := range []string{"", "   ", "Basic Zm9vOmJhcg=="} {
		_, err := a.Authenticate(ctx, header)
		assert.ErrorIs(t, err, authentication.ErrMissingHeader, "header %q", header)
	}

	user := authentication.ForUser(&authdomain.User{ID: 3, IsActive: true})
	next.EXPECT().Authenticate(gomock.Any(), "TOKEN k").Return(user, nil)
	p, err := a.Authenticate(ctx, "TOKEN k")
	require.NoError(t, err)
	assert.Equal(t, user, p)
}

func TestStaffTokenAuthenticator(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockAuthenticator(ctrl)
	a := authentication.NewStaffTokenAuthenticator(next)
	ctx := context.Background()

	staff := authentication.ForUser(&authdomain.User{ID: 1, IsActive: true, IsStaff: true})
	plain := authentication.ForUser(&authdomain.User{ID: 2, IsActive: true})
	app := authentication.ForApplication(&appdomain.AuthorizedApplication{ID: 3})

	next.EXPECT().Authenticate(gomock.Any(), "Token staff").Return(staff, nil)
	next.EXPECT().Authenticate(gomock.Any(), "Token plain").Return(plain, nil)
	next.EXPECT().Authenticate(gomock.Any(), "Token app").Return(app, nil)
	next.EXPECT().Authenticate(gomock.Any(), "").Return(authentication.Anonymous(), authentication.ErrMissingHeader)

	p, err := a.Authenticate(ctx, "Token staff")
	require.NoError(t, err)
	assert.Equal(t, "staff", p.Subject())

	_, err = a.Authenticate(ctx, "Token plain")
	assert.ErrorIs(t, err, authentication.ErrNotStaff)

	_, err = a.Authenticate(ctx, "Token app")
	assert.ErrorIs(t, err, authentication.ErrNotStaff)

	_, err = a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, authentication.ErrMissingHeader)
}

func TestFirstOf(t *testing.T) {
	ctrl := gomock.NewController(t)
	apps := mocks.NewMockApplicationStore(ctrl)
	users := mocks.NewMockUserTokenStore(ctrl)
	chain := authentication.FirstOf(
		authentication.NewApplicationTokenAuthenticator("Token", apps),
		authentication.NewTokenAuthenticator("Token", users),
	)
	ctx := context.Background()

	apps.EXPECT().FindByKey(gomock.Any(), "app").Return(&appdomain.AuthorizedApplication{ID: 1}, nil)
	p, err := chain.Authenticate(ctx, "Token app")
	require.NoError(t, err)
	assert.True(t, p.IsApplication())

	apps.EXPECT().FindByKey(gomock.Any(), "usr").Return(nil, appdomain.ErrNotFound)
	users.EXPECT().ResolveToken(gomock.Any(), "usr").Return(&authdomain.User{ID: 2, IsActive: true, IsStaff: true}, nil)
	p, err = chain.Authenticate(ctx, "Token usr")
	require.NoError(t, err)
	assert.True(t, p.IsStaff())

	apps.EXPECT().FindByKey(gomock.Any(), "junk").Return(nil, appdomain.ErrNotFound)
	users.EXPECT().ResolveToken(gomock.Any(), "junk").Return(nil, authdomain.ErrTokenNotFound)
	_, err = chain.Authenticate(ctx, "Token junk")
	assert.ErrorIs(t, err, authentication.ErrInvalidToken)

	p, err = chain.Authenticate(ctx, "")
	require.NoError(t, err)
	assert.True(t, p.IsAnonymous())

	_, err = chain.Authenticate(ctx, "Token a b")
	assert.ErrorIs(t, err, authentication.ErrTokenHasSpaces)
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, authentication.FromContext(ctx).IsAnonymous())

	p := authentication.ForUser(&authdomain.User{ID: 5})
	ctx = authentication.WithPrincipal(ctx, p)
	assert.Equal(t, p, authentication.FromContext(ctx))
	assert.Equal(t, "5", authentication.FromContext(ctx).ID())
}
