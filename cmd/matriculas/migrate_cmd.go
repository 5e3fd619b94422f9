package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/sigacad/matriculas/migrations"
	"github.com/sigacad/matriculas/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the matrículas schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), goose.UpContext)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), goose.DownContext)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), goose.StatusContext)
		},
	})

	return cmd
}

func runMigrate(ctx context.Context, action func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error) error {
	conf := configuration.Use()

	db, err := sql.Open("pgx", conf.Database.ConnectionString())
	if err != nil {
		return withCode(exitDB, fmt.Errorf("open db: %w", err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return withCode(exitDB, err)
	}
	if err := action(ctx, db, "."); err != nil {
		return withCode(exitDB, fmt.Errorf("migrate: %w", err))
	}
	return nil
}
