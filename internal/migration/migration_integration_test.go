//go:build integration

package migration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigratePostgres(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "kpi",
				"POSTGRES_PASSWORD": "kpi",
				"POSTGRES_DB":       "kpi",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := db.Config{
		Type:     "postgres",
		Host:     host,
		Port:     port.Port(),
		Name:     "kpi",
		User:     "kpi",
		Password: "kpi",
		SSLMode:  "disable",
	}

	dialector, err := db.Dialect(cfg)
	require.NoError(t, err)

	var conn *gorm.DB
	require.Eventually(t, func() bool {
		conn, err = gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return false
		}
		sqlDB, err := conn.DB()
		return err == nil && sqlDB.PingContext(ctx) == nil
	}, 30*time.Second, 500*time.Millisecond, fmt.Sprintf("postgres at %s:%s never became ready", host, port.Port()))

	require.NoError(t, Migrate(conn, "postgres"))
	// Re-running is a no-op.
	require.NoError(t, Migrate(conn, "postgres"))

	for _, table := range []string{
		"users",
		"user_tokens",
		"authorized_applications",
		"one_time_authentication_keys",
		"collections",
		"survey_assets",
		"survey_asset_versions",
		"tags",
		"survey_asset_tags",
		"collection_tags",
		"audit_logs",
	} {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}
