package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	otkdomain "github.com/smallbiznis/kpi/internal/onetimekey/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"gorm.io/gorm"
)

const migrationsDir = "sql"

//go:embed sql/*.sql
var embeddedMigrations embed.FS

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&authdomain.User{},
		&authdomain.Token{},
		&appdomain.AuthorizedApplication{},
		&otkdomain.OneTimeAuthenticationKey{},
		&tagdomain.Tag{},
		&collectiondomain.Collection{},
		&assetdomain.SurveyAsset{},
		&assetdomain.AssetVersion{},
		&auditdomain.AuditLog{},
	}
}

// Migrate brings the schema up to date. PostgreSQL uses the versioned SQL
// migrations; other dialects fall back to GORM AutoMigrate.
func Migrate(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "postgres", "postgresql", "":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	default:
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
}

// RunMigrations applies the embedded PostgreSQL migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
