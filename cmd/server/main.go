package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"catalog/internal/adapters/http/perf"
	"catalog/internal/adapters/storage"
	accountStore "catalog/internal/adapters/storage/account"
	artworkStore "catalog/internal/adapters/storage/artwork"
	artworkTypeStore "catalog/internal/adapters/storage/artworktype"
	materialStore "catalog/internal/adapters/storage/material"
	"catalog/internal/adapters/storage/memory"
	"catalog/internal/application/orchestrators"
	"catalog/internal/application/workspace"
	"catalog/internal/config"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var (
	cfg        *config.Config
	configFile string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:     "catalog",
		Short:   "Art catalog server",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			slog.SetDefault(newLogger())
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./catalog.yaml)")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Log.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// backend is the opened database plus the data ports built on it.
type backend struct {
	db        *storage.TimedDB
	collector *perf.Collector
	accounts  *accountStore.SQLiteStore
	ports     workspace.Ports
}

// openBackend opens and migrates the database and builds the configured data ports.
// Accounts always live in SQLite; the memory data port keeps them in ":memory:" when no db_path is set.
func openBackend() (*backend, error) {
	path := cfg.DBPath
	if cfg.DataPort == config.DataPortMemory && path == "" {
		path = ":memory:"
	}
	raw, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	if err := storage.InitDB(raw); err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	collector := perf.NewCollector(cfg.Perf.RingSize)
	db := storage.NewTimedDB(raw, collector, cfg.SlowQuery())

	b := &backend{
		db:        db,
		collector: collector,
		accounts:  accountStore.NewSQLiteStore(db),
	}
	switch cfg.DataPort {
	case config.DataPortMemory:
		b.ports = workspace.Ports{
			Artworks:     memory.NewPort[artwork.Artwork](),
			Materials:    memory.NewPort[material.Material](),
			ArtworkTypes: memory.NewPort[artworktype.ArtworkType](),
		}
	default:
		b.ports = workspace.Ports{
			Artworks:     artworkStore.NewSQLiteStore(db),
			Materials:    materialStore.NewSQLiteStore(db),
			ArtworkTypes: artworkTypeStore.NewSQLiteStore(db),
		}
	}
	return b, nil
}

func (b *backend) Close() error {
	return b.db.Close()
}

// seedCatalog loads the sample catalog into the backend's data ports.
func (b *backend) seedCatalog(ctx context.Context) (orchestrators.SeedCatalogResult, error) {
	return orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{
		ArtworkTypes: b.ports.ArtworkTypes,
		Materials:    b.ports.Materials,
		Artworks:     b.ports.Artworks,
	})
}

// seedAdmin creates the first admin account on an empty account table.
// Without admin_password a random one is generated in development and seeding is skipped in production.
func (b *backend) seedAdmin(ctx context.Context) error {
	password := cfg.AdminPassword
	if password == "" {
		if cfg.IsProduction() {
			count, err := b.accounts.Count(ctx)
			if err != nil {
				return err
			}
			if count == 0 {
				slog.Warn("auth_event", "event", "admin_seed_skipped", "reason", "CATALOG_ADMIN_PASSWORD not set")
			}
			return nil
		}
		password = randomHex(12)
		slog.Info("auth_event", "event", "admin_password_generated", "email", cfg.AdminEmail, "password", password)
	}
	return orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{AccountStore: b.accounts}, cfg.AdminEmail, password)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(buf)
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	return storage.SchemaVersion(ctx, db)
}
