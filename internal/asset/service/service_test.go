package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kpi/internal/asset/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/clock"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	collectionservice "github.com/smallbiznis/kpi/internal/collection/service"
	"github.com/smallbiznis/kpi/internal/config"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	tagservice "github.com/smallbiznis/kpi/internal/tag/service"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"github.com/smallbiznis/kpi/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc         domain.Service
	collections collectiondomain.Service
	tags        tagdomain.Service
	clock       *clock.FakeClock
	alice       *authdomain.User
	bob         *authdomain.User
}

func newFixture(t *testing.T, settings config.APISettings) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&tagdomain.Tag{},
		&collectiondomain.Collection{},
		&domain.SurveyAsset{},
		&domain.AssetVersion{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	holder := config.NewStaticSettings(settings)

	tags := tagservice.New(tagservice.Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.ProvideStore[tagdomain.Tag](conn),
		Settings: holder,
	})
	collections := collectionservice.New(collectionservice.Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.ProvideStore[collectiondomain.Collection](conn),
		Tags:     tags,
		Clock:    clk,
		Settings: holder,
	})
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.ProvideStore[domain.SurveyAsset](conn),
		Versions:    repository.ProvideStore[domain.AssetVersion](conn),
		Collections: collections,
		Tags:        tags,
		Clock:       clk,
		Settings:    holder,
	})

	return fixture{
		svc:         svc,
		collections: collections,
		tags:        tags,
		clock:       clk,
		alice:       createUser(t, conn, node, "alice"),
		bob:         createUser(t, conn, node, "bob"),
	}
}

func createUser(t *testing.T, conn *gorm.DB, node *snowflake.Node, username string) *authdomain.User {
	t.Helper()
	now := time.Now().UTC()
	user := &authdomain.User{
		ID:           node.Generate(),
		Username:     username,
		PasswordHash: "x",
		IsActive:     true,
		DateJoined:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func ptr[T any](v T) *T { return &v }

func TestCreateAsset(t *testing.T) {
	f := newFixture(t, config.DefaultAPISettings())
	ctx := context.Background()

	coll, err := f.collections.Create(ctx, f.alice.ID, collectiondomain.CreateRequest{Name: "Mine"})
	require.NoError(t, err)

	asset, err := f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{
		Name:          "Household",
		Content:       datatypes.JSON(`{"survey": [{"type": "text", "name": "q1"}]}`),
		CollectionUID: &coll.UID,
		Tags:          []string{"water"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(asset.UID, "a"))
	assert.Equal(t, domain.AssetTypeSurvey, asset.AssetType)
	assert.JSONEq(t, `{}`, string(asset.Settings))
	assert.Equal(t, int64(1), asset.VersionCount)
	require.NotNil(t, asset.Collection)
	assert.Equal(t, coll.UID, asset.Collection.UID)
	assert.Equal(t, "alice", asset.Owner.Username)
	assert.Equal(t, []string{"water"}, tagdomain.Names(asset.Tags))

	inCollection, err := f.svc.ListByCollection(ctx, coll.ID)
	require.NoError(t, err)
	assert.Len(t, inCollection, 1)
}

func TestCreateRejectsForeignCollection(t *testing.T) {
	f := newFixture(t, config.DefaultAPISettings())
	ctx := context.Background()

	theirs, err := f.collections.Create(ctx, f.bob.ID, collectiondomain.CreateRequest{Name: "Bob's"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{
		Content:       datatypes.JSON(`{}`),
		CollectionUID: &theirs.UID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)

	_, err = f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{
		Content:       datatypes.JSON(`{}`),
		CollectionUID: ptr("cMISSING"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)
}

func TestCreateValidatesJSON(t *testing.T) {
	f := newFixture(t, config.DefaultAPISettings())
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{Content: datatypes.JSON(`{`)})
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{
		Content:  datatypes.JSON(`{}`),
		Settings: datatypes.JSON(`nope`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestUpdateWritesVersionAndClearsCollection(t *testing.T) {
	f := newFixture(t, config.DefaultAPISettings())
	ctx := context.Background()

	coll, err := f.collections.Create(ctx, f.alice.ID, collectiondomain.CreateRequest{})
	require.NoError(t, err)
	asset, err := f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{
		Name:          "v1",
		Content:       datatypes.JSON(`{"survey": []}`),
		CollectionUID: &coll.UID,
	})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	content := datatypes.JSON(`{"survey": [{"name": "q2"}]}`)
	updated, err := f.svc.Update(ctx, f.alice.ID, asset.UID, domain.UpdateRequest{
		Name:          ptr("v2"),
		Content:       &content,
		CollectionSet: true,
		Tags:          ptr([]string{"x", "y"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Name)
	assert.JSONEq(t, string(content), string(updated.Content))
	assert.Nil(t, updated.CollectionID)
	assert.Equal(t, int64(2), updated.VersionCount)
	assert.ElementsMatch(t, []string{"x", "y"}, tagdomain.Names(updated.Tags))

	_, err = f.svc.Update(ctx, f.bob.ID, asset.UID, domain.UpdateRequest{Name: ptr("stolen")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAndListByTag(t *testing.T) {
	settings := config.DefaultAPISettings()
	settings.PageSize = 1
	f := newFixture(t, settings)
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		_, err := f.svc.Create(ctx, f.alice.ID, domain.CreateRequest{
			Name:    name,
			Content: datatypes.JSON(`{}`),
			Tags:    []string{"shared"},
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, f.bob.ID, domain.CreateRequest{
		Name:    "bobs",
		Content: datatypes.JSON(`{}`),
		Tags:    []string{"shared"},
	})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, f.alice.ID, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Assets, 1)
	assert.True(t, page.HasMore)
	assert.Equal(t, "first", page.Assets[0].Name)

	page, err = f.svc.List(ctx, f.alice.ID, domain.ListRequest{Pagination: pagination.Pagination{PageToken: page.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, page.Assets, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "second", page.Assets[0].Name)

	tag, err := f.tags.GetByName(ctx, "shared")
	require.NoError(t, err)
	tagged, err := f.svc.ListByTag(ctx, f.alice.ID, tag.ID)
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	owned, err := f.svc.ListByOwner(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
