package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/database/migrations"
	"github.com/shashiranjanraj/medcart/database/seeders"
	"github.com/shashiranjanraj/medcart/pkg/migration"
)

// openDB loads config and connects to the store selected by DB_DRIVER.
func openDB(ctx context.Context) (repositories.Repositories, *repositories.Backend, error) {
	if err := config.Load(); err != nil {
		return repositories.Repositories{}, nil, err
	}
	return repositories.Open(ctx)
}

// medcart migrate [--rollback | --status]
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending migrations (SQL drivers) or ensure indexes (mongo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, backend, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer backend.Close(context.Background())

		out := cmd.OutOrStdout()
		rollback, _ := cmd.Flags().GetBool("rollback")
		status, _ := cmd.Flags().GetBool("status")

		switch {
		case backend.Mongo != nil:
			if rollback || status {
				return fmt.Errorf("migrate: --rollback and --status need a SQL driver, DB_DRIVER is %s", backend.Driver)
			}
			fmt.Fprintln(out, "Ensuring MongoDB indexes…")
			return migrations.EnsureMongoIndexes(ctx, backend.Mongo)
		case backend.SQL == nil:
			fmt.Fprintf(out, "Nothing to migrate for DB_DRIVER=%s\n", backend.Driver)
			return nil
		}

		runner := migration.New(backend.SQL, out)
		switch {
		case status:
			return runner.Status()
		case rollback:
			fmt.Fprintln(out, "Rolling back last batch…")
			return runner.Rollback()
		}
		fmt.Fprintln(out, "Running migrations…")
		return runner.Run()
	},
}

// medcart seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo pharmacies and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repos, backend, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer backend.Close(context.Background())

		// The unique email index is what makes re-seeding a no-op.
		if backend.Mongo != nil {
			if err := migrations.EnsureMongoIndexes(ctx, backend.Mongo); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(ctx, repos, cmd.OutOrStdout())
	},
}

func init() {
	migrateCmd.Flags().Bool("rollback", false, "roll back the last batch")
	migrateCmd.Flags().Bool("status", false, "show the status of each migration")
	migrateCmd.MarkFlagsMutuallyExclusive("rollback", "status")
}
