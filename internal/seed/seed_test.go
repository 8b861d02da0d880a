package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	appservice "github.com/smallbiznis/kpi/internal/application/service"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	auditrepository "github.com/smallbiznis/kpi/internal/audit/repository"
	auditservice "github.com/smallbiznis/kpi/internal/audit/service"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	authrepository "github.com/smallbiznis/kpi/internal/auth/repository"
	authservice "github.com/smallbiznis/kpi/internal/auth/service"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/smallbiznis/kpi/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSeeder(t *testing.T) (*Seeder, auditdomain.Service) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &authdomain.Token{}, &appdomain.AuthorizedApplication{}, &auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	users := authservice.New(authservice.Params{Log: zap.NewNop(), GenID: node, Repo: authrepository.New(conn), Clock: clk})
	apps := appservice.New(appservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.ProvideStore[appdomain.AuthorizedApplication](conn),
		Clock: clk,
	})
	audits := auditservice.NewService(auditservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
		Clock: clk,
	})
	return New(zap.NewNop(), users, apps, audits), audits
}

func TestEnsureStaff(t *testing.T) {
	s, _ := newSeeder(t)
	ctx := context.Background()

	_, _, err := s.EnsureStaff(ctx, "root", "")
	require.ErrorIs(t, err, ErrPasswordRequired)

	user, created, err := s.EnsureStaff(ctx, "root", "pw")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, user.IsStaff)

	again, created, err := s.EnsureStaff(ctx, "root", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	token, err := s.Token(ctx, user)
	require.NoError(t, err)
	assert.Len(t, token, 40)
}

func TestCreateApplication(t *testing.T) {
	s, audits := newSeeder(t)

	app, err := s.CreateApplication(context.Background(), " enketo ", "")
	require.NoError(t, err)
	assert.Equal(t, "enketo", app.Name)
	assert.Len(t, app.Key, appdomain.KeyLength)

	_, err = s.CreateApplication(context.Background(), "short", "abc")
	require.ErrorIs(t, err, appdomain.ErrInvalidKey)

	resp, err := audits.List(context.Background(), auditdomain.ListAuditLogRequest{
		Action: auditdomain.ActionApplicationCreate,
	})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	entry := resp.AuditLogs[0]
	assert.Equal(t, auditdomain.ActorTypeSystem, entry.ActorType)
	assert.Equal(t, "enketo", entry.Metadata["name"])
	assert.Equal(t, "****"+app.Key[len(app.Key)-4:], entry.Metadata["key"])
}
