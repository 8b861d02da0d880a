package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	"github.com/smallbiznis/kpi/internal/migration"
	onetimekeydomain "github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const envStaffPassword = "KPI_STAFF_PASSWORD"

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(context.Context) error {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			}, migration.Module)
		},
	}
}

func newCreateApplicationCmd() *cobra.Command {
	var name, key string
	cmd := &cobra.Command{
		Use:   "create-application",
		Short: "Register an authorized application and print its key",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seeder *seed.Seeder
			return withApp(cmd.Context(), func(ctx context.Context) error {
				app, err := seeder.CreateApplication(ctx, name, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", app.Name, app.Key)
				return nil
			}, fx.Populate(&seeder))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "application name")
	cmd.Flags().StringVar(&key, "key", "", "60 character key, generated when empty")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newListApplicationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-applications",
		Short: "Print the authorized applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			var apps appdomain.Service
			return withApp(cmd.Context(), func(ctx context.Context) error {
				list, err := apps.List(ctx)
				if err != nil {
					return err
				}
				for _, app := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", app.Name, app.Key)
				}
				return nil
			}, fx.Populate(&apps))
		},
	}
}

func newCreateStaffCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff account and print its token",
		Long:  "Create a staff account and print its token. The password is read from " + envStaffPassword + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seeder *seed.Seeder
			return withApp(cmd.Context(), func(ctx context.Context) error {
				user, created, err := seeder.EnsureStaff(ctx, username, os.Getenv(envStaffPassword))
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", user.Username)
					return nil
				}
				token, err := seeder.Token(ctx, user)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", user.Username, token)
				return nil
			}, fx.Populate(&seeder))
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "staff username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newPurgeOneTimeKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-one-time-keys",
		Short: "Delete expired one-time authentication keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys onetimekeydomain.Service
			return withApp(cmd.Context(), func(ctx context.Context) error {
				n, err := keys.PurgeExpired(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d expired keys deleted\n", n)
				return nil
			}, fx.Populate(&keys))
		},
	}
}

func newAuditLogCmd() *cobra.Command {
	var req auditdomain.ListAuditLogRequest
	cmd := &cobra.Command{
		Use:   "audit-log",
		Short: "Print recorded credential and account changes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var audits auditdomain.Service
			return withApp(cmd.Context(), func(ctx context.Context) error {
				resp, err := audits.List(ctx, req)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, entry := range resp.AuditLogs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						entry.CreatedAt.Format(time.RFC3339),
						entry.Action,
						actor(entry),
						entry.TargetType,
						deref(entry.TargetID),
					)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if resp.HasMore {
					fmt.Fprintf(cmd.OutOrStdout(), "next cursor: %s\n", resp.NextPageToken)
				}
				return nil
			}, fx.Populate(&audits))
		},
	}
	cmd.Flags().StringVar(&req.Action, "action", "", "only entries with this action")
	cmd.Flags().StringVar(&req.TargetType, "target-type", "", "only entries for this target type")
	cmd.Flags().StringVar(&req.ActorType, "actor-type", "", "only entries by this actor type")
	cmd.Flags().StringVar(&req.PageToken, "cursor", "", "cursor printed by a previous page")
	cmd.Flags().IntVar(&req.PageSize, "limit", 50, "entries per page")
	return cmd
}

func actor(entry auditdomain.AuditLog) string {
	if entry.ActorID == nil {
		return entry.ActorType
	}
	return entry.ActorType + ":" + *entry.ActorID
}

func deref(value *string) string {
	if value == nil {
		return "-"
	}
	return *value
}
