package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/internal/config"
	"github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/smallbiznis/kpi/pkg/randstr"
	"github.com/smallbiznis/kpi/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.OneTimeAuthenticationKey{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.ProvideStore[domain.OneTimeAuthenticationKey](conn),
		Clock:    clk,
		Settings: config.NewStaticSettings(config.DefaultAPISettings()),
	})
	return svc, clk
}

func TestIssueDefaultsExpiryToTenMinutes(t *testing.T) {
	svc, clk := newTestService(t)

	otk, err := svc.Issue(context.Background(), snowflake.ID(42))
	require.NoError(t, err)
	assert.Len(t, otk.Key, appdomain.KeyLength)
	assert.True(t, randstr.Only(otk.Key, appdomain.KeyAlphabet))
	assert.Equal(t, clk.Now().Add(10*time.Minute), otk.Expiry)
}

func TestIssueRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Issue(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestRedeemIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	otk, err := svc.Issue(ctx, snowflake.ID(7))
	require.NoError(t, err)

	redeemed, err := svc.Redeem(ctx, otk.Key)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(7), redeemed.UserID)

	_, err = svc.Redeem(ctx, otk.Key)
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestRedeemExpired(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	otk, err := svc.Issue(ctx, snowflake.ID(7))
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	_, err = svc.Redeem(ctx, otk.Key)
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestRedeemUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Redeem(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = svc.Redeem(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestPurgeExpired(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, snowflake.ID(1))
	require.NoError(t, err)
	clk.Advance(5 * time.Minute)
	fresh, err := svc.Issue(ctx, snowflake.ID(2))
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)
	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	redeemed, err := svc.Redeem(ctx, fresh.Key)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(2), redeemed.UserID)
}
