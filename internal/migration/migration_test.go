package migration

import (
	"testing"

	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLiteAutoMigrates(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Migrate(conn, "sqlite"))

	for _, table := range []string{"users", "user_tokens", "authorized_applications", "survey_assets", "survey_asset_tags", "collection_tags", "audit_logs"} {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestMigrateRequiresHandle(t *testing.T) {
	require.Error(t, Migrate(nil, "sqlite"))
	require.Error(t, RunMigrations(nil))
}
