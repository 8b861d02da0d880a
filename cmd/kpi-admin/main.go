package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kpi/internal/application"
	"github.com/smallbiznis/kpi/internal/audit"
	"github.com/smallbiznis/kpi/internal/auth"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/internal/config"
	"github.com/smallbiznis/kpi/internal/observability"
	"github.com/smallbiznis/kpi/internal/onetimekey"
	"github.com/smallbiznis/kpi/internal/seed"
	"github.com/smallbiznis/kpi/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kpi-admin",
		Short:         "Administrative tasks for the kpi service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newCreateApplicationCmd(),
		newListApplicationsCmd(),
		newCreateStaffCmd(),
		newPurgeOneTimeKeysCmd(),
		newAuditLogCmd(),
	)
	return root
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

// withApp starts the infrastructure plus opts, populates targets, runs fn and
// stops the application again.
func withApp(ctx context.Context, fn func(context.Context) error, opts ...fx.Option) error {
	base := []fx.Option{
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		auth.Module,
		application.Module,
		onetimekey.Module,
		audit.Module,
		fx.Provide(seed.New),
	}
	app := fx.New(append(base, opts...)...)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)
	if err := app.Stop(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
