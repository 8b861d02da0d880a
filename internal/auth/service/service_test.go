package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/auth/mocks"
	"github.com/smallbiznis/kpi/internal/auth/password"
	"github.com/smallbiznis/kpi/internal/auth/repository"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Token{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(conn),
		Clock: clock.NewFakeClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
	})
}

func TestCreateAccountIssuesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{
		Username: "alice",
		Password: "s3cret",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.True(t, password.Verify("s3cret", user.PasswordHash))

	token, err := svc.TokenForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, token.Key, 40)

	resolved, err := svc.ResolveToken(ctx, token.Key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestCreateAccountRejectsDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, domain.CreateAccountRequest{Username: "bob", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	exists, err := svc.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateAccountValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.CreateAccountRequest
		want error
	}{
		{"uppercase", domain.CreateAccountRequest{Username: "Alice", Password: "pw"}, domain.ErrInvalidUsername},
		{"leading digit", domain.CreateAccountRequest{Username: "1alice", Password: "pw"}, domain.ErrInvalidUsername},
		{"single char", domain.CreateAccountRequest{Username: "a", Password: "pw"}, domain.ErrInvalidUsername},
		{"too long", domain.CreateAccountRequest{Username: "a234567890123456789012345678901", Password: "pw"}, domain.ErrInvalidUsername},
		{"missing password", domain.CreateAccountRequest{Username: "alice"}, domain.ErrInvalidPassword},
		{"bad email", domain.CreateAccountRequest{Username: "alice", Password: "pw", Email: "nope"}, domain.ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateAccountPartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{
		Username:  "carol",
		Password:  "old",
		FirstName: "Carol",
	})
	require.NoError(t, err)

	last := "Smith"
	pw := "new"
	updated, err := svc.UpdateAccount(ctx, "carol", domain.UpdateAccountRequest{
		LastName: &last,
		Password: &pw,
	})
	require.NoError(t, err)
	assert.Equal(t, "Carol", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
	assert.True(t, password.Verify("new", updated.PasswordHash))
	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)
}

func TestUpdateAccountRenameConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"dave", "erin"} {
		_, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{Username: name, Password: "pw"})
		require.NoError(t, err)
	}

	next := "erin"
	_, err := svc.UpdateAccount(ctx, "dave", domain.UpdateAccountRequest{Username: &next})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.UpdateAccount(ctx, "nobody", domain.UpdateAccountRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestResolveTokenUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ResolveToken(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	_, err = svc.ResolveToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestUsernameExistsPropagatesRepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	boom := errors.New("connection reset")
	repo.EXPECT().FindByUsername(gomock.Any(), "frank").Return(nil, boom)

	svc := New(Params{
		Log:   zap.NewNop(),
		Repo:  repo,
		Clock: clock.NewSystemClock(),
	})

	_, err := svc.UsernameExists(context.Background(), "frank")
	assert.ErrorIs(t, err, boom)
}
