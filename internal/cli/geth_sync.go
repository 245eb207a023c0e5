package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/keymigrate/internal/config"
	"github.com/mrlokans/keymigrate/internal/entrypoint"
	"github.com/mrlokans/keymigrate/internal/scheduler"
)

// GethSyncCommand re-imports a geth keystore directory on a schedule until interrupted
type GethSyncCommand struct {
	cfg     *config.Config
	version string
}

func NewGethSyncCommand(cfg *config.Config, version string) *GethSyncCommand {
	return &GethSyncCommand{cfg: cfg, version: version}
}

func (cmd *GethSyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("geth-sync", flag.ExitOnError)

	fs.StringVar(&cmd.cfg.Geth.KeystoreDir, "dir", cmd.cfg.Geth.KeystoreDir, "Path to the geth keystore directory")
	fs.StringVar(&cmd.cfg.Keystore.DatabasePath, "db", cmd.cfg.Keystore.DatabasePath, "Path to the local key store database")
	fs.StringVar(&cmd.cfg.GethSync.Schedule, "schedule", cmd.cfg.GethSync.Schedule, "Cron schedule (5 fields)")
	fs.StringVar(&cmd.cfg.Metrics.TextfilePath, "metrics-file", cmd.cfg.Metrics.TextfilePath, "Rewrite import metrics to this file after every run")
	fs.StringVar(&cmd.cfg.Audit.Dir, "audit-dir", cmd.cfg.Audit.Dir, "Directory for JSON import reports")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s geth-sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import the geth keystore now and then on a cron schedule until\n")
		fmt.Fprintf(os.Stderr, "interrupted (SIGINT/SIGTERM).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import every hour:\n")
		fmt.Fprintf(os.Stderr, "  %s geth-sync -schedule \"0 * * * *\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.cfg.Geth.KeystoreDir == "" {
		return fmt.Errorf("required flag -dir not provided")
	}
	if err := scheduler.ValidateSchedule(cmd.cfg.GethSync.Schedule); err != nil {
		return fmt.Errorf("invalid -schedule %q: %w", cmd.cfg.GethSync.Schedule, err)
	}

	return nil
}

func (cmd *GethSyncCommand) Run() error {
	return entrypoint.Run(cmd.cfg, cmd.version)
}
