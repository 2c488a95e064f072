package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/geocoder89/agenda/internal/config"
	"github.com/geocoder89/agenda/internal/db"
	"github.com/geocoder89/agenda/internal/repo/postgres"
	"github.com/geocoder89/agenda/internal/security"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agendactl",
		Short: "Administrative tasks for the agenda API",
		Long: `agendactl prepares and maintains the agenda database.

  agendactl migrate                 Apply the schema
  agendactl seed --file seed.yaml   Create units and users from a file
  agendactl hash-password <plain>   Print a bcrypt hash`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newHashPasswordCmd())
	return root
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DBURL, 2)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create units and users listed in a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			f, err := db.LoadSeedFile(file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			report, err := db.Seed(ctx,
				postgres.NewUnitsRepo(pool, nil),
				postgres.NewUsersRepo(pool, nil),
				security.Hasher{},
				f,
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "units: %d created, %d skipped\nusers: %d created, %d skipped\n",
				report.UnitsCreated, report.UnitsSkipped, report.UsersCreated, report.UsersSkipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (YAML)")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <plain>",
		Short: "Print a bcrypt hash for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain := strings.TrimSpace(args[0])
			if plain == "" {
				return errors.New("password must not be empty")
			}

			hash, err := security.Hasher{Cost: cost}.Hash(plain)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", security.DefaultCost, "bcrypt cost")
	return cmd
}
