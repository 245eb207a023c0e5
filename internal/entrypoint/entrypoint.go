package entrypoint

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/keymigrate/internal/audit"
	"github.com/mrlokans/keymigrate/internal/config"
	"github.com/mrlokans/keymigrate/internal/importers"
	"github.com/mrlokans/keymigrate/internal/keystore"
	"github.com/mrlokans/keymigrate/internal/logger"
	"github.com/mrlokans/keymigrate/internal/metrics"
	"github.com/mrlokans/keymigrate/internal/scheduler"
)

// Run keeps the local key store in sync with the geth keystore until
// SIGINT or SIGTERM is received.
func Run(cfg *config.Config, version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return RunContext(ctx, cfg, version)
}

// RunContext is Run with caller-controlled cancellation.
func RunContext(ctx context.Context, cfg *config.Config, version string) error {
	log := logger.Named("entrypoint")
	log.Info().Str("version", version).Msg("starting keymigrate geth sync")

	if _, err := os.Stat(cfg.Geth.KeystoreDir); err != nil {
		return fmt.Errorf("geth keystore directory %s is not accessible: %w", cfg.Geth.KeystoreDir, err)
	}

	store, err := keystore.New(keystore.Config{
		DatabasePath:  cfg.Keystore.DatabasePath,
		EncryptionKey: cfg.Keystore.EncryptionKey,
	})
	if err != nil {
		return fmt.Errorf("failed to open key store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("error closing key store")
		}
	}()

	m := metrics.New()
	importer := importers.NewGethImporter(store, logger.Named("geth-import"), m)

	syncer := scheduler.NewGethSyncScheduler(importer, scheduler.GethSyncConfig{
		Dir:         cfg.Geth.KeystoreDir,
		Schedule:    cfg.GethSync.Schedule,
		MetricsFile: cfg.Metrics.TextfilePath,
	}, audit.NewService(cfg.Audit.Dir), m)

	if err := syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start geth sync: %w", err)
	}

	// Import once right away instead of waiting for the first tick
	syncer.SyncNow()
	if next := syncer.NextRunTime(); next != nil {
		log.Info().Time("next_run", *next).Msg("waiting for next geth sync")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	syncer.Stop()

	if last := syncer.LastResult(); last != nil {
		log.Info().
			Int("discovered", last.Discovered).
			Int("imported", last.Imported).
			Int("failed", last.Failed).
			Msg("last geth sync")
	}

	log.Info().Msg("keymigrate exiting")
	return nil
}
