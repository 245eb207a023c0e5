package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/keymigrate/internal/audit"
	"github.com/mrlokans/keymigrate/internal/config"
	"github.com/mrlokans/keymigrate/internal/importers"
	"github.com/mrlokans/keymigrate/internal/keystore"
	"github.com/mrlokans/keymigrate/internal/logger"
	"github.com/mrlokans/keymigrate/internal/metrics"
)

// TriggerCLI marks reports written by the geth-import command
const TriggerCLI = "cli"

// GethImportCommand imports a geth keystore directory into the local key store
type GethImportCommand struct {
	KeystoreDir   string
	DatabasePath  string
	EncryptionKey string
	MetricsFile   string
	AuditDir      string
	LogFormat     string
	Verbose       bool
	DryRun        bool

	out io.Writer
}

func NewGethImportCommand(cfg *config.Config) *GethImportCommand {
	return &GethImportCommand{
		KeystoreDir:   cfg.Geth.KeystoreDir,
		DatabasePath:  cfg.Keystore.DatabasePath,
		EncryptionKey: cfg.Keystore.EncryptionKey,
		MetricsFile:   cfg.Metrics.TextfilePath,
		AuditDir:      cfg.Audit.Dir,
		LogFormat:     cfg.Log.Format,
		out:           os.Stdout,
	}
}

func (cmd *GethImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("geth-import", flag.ExitOnError)

	fs.StringVar(&cmd.KeystoreDir, "dir", cmd.KeystoreDir, "Path to the geth keystore directory")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the local key store database")
	fs.StringVar(&cmd.MetricsFile, "metrics-file", cmd.MetricsFile, "Write import metrics to this file (node_exporter textfile format)")
	fs.StringVar(&cmd.AuditDir, "audit-dir", cmd.AuditDir, "Directory for JSON import reports")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "List the keys that would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s geth-import [-dir <path>] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import keys from a geth keystore directory into the local key store.\n\n")
		fmt.Fprintf(os.Stderr, "The geth keystore is typically found at:\n")
		fmt.Fprintf(os.Stderr, "  Linux:   ~/.ethereum/keystore\n")
		fmt.Fprintf(os.Stderr, "  macOS:   ~/Library/Ethereum/keystore\n")
		fmt.Fprintf(os.Stderr, "  Windows: %%APPDATA%%\\Ethereum\\keystore\n\n")
		fmt.Fprintf(os.Stderr, "Files that cannot be imported are reported and skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import from the default geth location:\n")
		fmt.Fprintf(os.Stderr, "  %s geth-import\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s geth-import -dir ~/.ethereum/keystore -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.KeystoreDir == "" {
		return fmt.Errorf("required flag -dir not provided")
	}

	return nil
}

func (cmd *GethImportCommand) Run() error {
	fmt.Fprintln(cmd.out, "Geth Keystore Import")
	fmt.Fprintln(cmd.out, "====================")

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "DRY RUN MODE - No changes will be made")
		fmt.Fprintln(cmd.out)
	}

	info, err := os.Stat(cmd.KeystoreDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("keystore directory not found: %s", cmd.KeystoreDir)
	}
	if err != nil {
		return fmt.Errorf("failed to access keystore directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", cmd.KeystoreDir)
	}

	fmt.Fprintf(cmd.out, "Directory: %s\n", cmd.KeystoreDir)

	if cmd.DryRun {
		return cmd.preview()
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Fprintf(cmd.out, "Key store: %s\n", cmd.DatabasePath)

	store, err := keystore.New(keystore.Config{
		DatabasePath:  cmd.DatabasePath,
		EncryptionKey: cmd.EncryptionKey,
	})
	if err != nil {
		return fmt.Errorf("failed to open key store: %w", err)
	}
	defer store.Close()

	m := metrics.New()
	importer := importers.NewGethImporter(store, cmd.importLogger(), m)

	fmt.Fprintln(cmd.out, "\nImporting keys...")
	startTime := time.Now()
	result, importErr := importer.ImportDirWithReport(cmd.KeystoreDir)
	finishTime := time.Now()

	report := audit.NewImportReport(result, importErr, TriggerCLI, startTime, finishTime)
	if filename, err := audit.NewService(cmd.AuditDir).LogImport(report); err != nil {
		fmt.Fprintf(cmd.out, "[WARN] Failed to save import report: %v\n", err)
	} else if filename != "" {
		fmt.Fprintf(cmd.out, "Import report: %s\n", filepath.Join(cmd.AuditDir, filename))
	}

	if err := m.WriteTextfile(cmd.MetricsFile); err != nil {
		fmt.Fprintf(cmd.out, "[WARN] %v\n", err)
	}

	if importErr != nil {
		return fmt.Errorf("failed to import keystore directory: %w", importErr)
	}

	if cmd.Verbose {
		for _, o := range result.Outcomes {
			if o.Err == nil {
				fmt.Fprintf(cmd.out, "  [OK] %s\n", o.Address.Hex())
			}
		}
	}

	fmt.Fprintln(cmd.out, "\n=== Import Summary ===")
	fmt.Fprintf(cmd.out, "Keys imported: %d/%d\n", result.Imported, result.Discovered)

	if failures := result.Failures(); len(failures) > 0 {
		fmt.Fprintf(cmd.out, "\n%d files skipped:\n", len(failures))
		for _, o := range failures {
			fmt.Fprintf(cmd.out, "  [ERROR] %s (%s): %v\n", o.Filename, importers.KindOf(o.Err), o.Err)
		}
	}

	return nil
}

func (cmd *GethImportCommand) preview() error {
	files, err := importers.EnumerateGethKeys(cmd.KeystoreDir)
	if err != nil {
		return fmt.Errorf("failed to read keystore directory: %w", err)
	}

	fmt.Fprintf(cmd.out, "Found %d keystore files\n", len(files))
	for i, f := range files {
		if cmd.Verbose {
			fmt.Fprintf(cmd.out, "%d. %s  %s\n", i+1, f.Address.Hex(), f.Filename)
		} else {
			fmt.Fprintf(cmd.out, "%d. %s\n", i+1, f.Address.Hex())
		}
	}

	fmt.Fprintln(cmd.out, "\nDry run complete. Use without -dry-run to import.")
	return nil
}

func (cmd *GethImportCommand) importLogger() *logger.Logger {
	if !cmd.Verbose {
		return logger.Named("geth-import")
	}
	l := logger.New(logger.Options{Level: "debug", Format: cmd.LogFormat, Component: "geth-import"})
	return &l
}
