package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"catalog/internal/adapters/storage"
	"catalog/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and print its version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DataPort == config.DataPortMemory && cfg.DBPath == "" {
				return errors.New("migrate: no db_path configured")
			}
			b, err := openBackend()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer func() { _ = b.Close() }()

			v, err := schemaVersion(cmd.Context(), b.db.RawDB())
			if err != nil {
				return fmt.Errorf("migrate: reading schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (latest %d)\n", v, storage.LatestSchemaVersion())
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var withAdmin bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DataPort != config.DataPortSQLite {
				return errors.New("seed: only the sqlite data port persists a catalog")
			}
			b, err := openBackend()
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer func() { _ = b.Close() }()

			if withAdmin {
				if err := b.seedAdmin(cmd.Context()); err != nil {
					return fmt.Errorf("seed: admin: %w", err)
				}
			}
			res, err := b.seedCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d artwork types, %d materials, %d artworks\n",
				res.ArtworkTypes, res.Materials, res.Artworks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withAdmin, "admin", false, "also create the admin account when none exists")
	return cmd
}
