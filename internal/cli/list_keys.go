package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/keymigrate/internal/config"
	"github.com/mrlokans/keymigrate/internal/keystore"
)

// ListKeysCommand prints the accounts held in the local key store
type ListKeysCommand struct {
	DatabasePath  string
	EncryptionKey string

	out io.Writer
}

func NewListKeysCommand(cfg *config.Config) *ListKeysCommand {
	return &ListKeysCommand{
		DatabasePath:  cfg.Keystore.DatabasePath,
		EncryptionKey: cfg.Keystore.EncryptionKey,
		out:           os.Stdout,
	}
}

func (cmd *ListKeysCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list-keys", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the local key store database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list-keys [-db <path>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List account addresses in the local key store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ListKeysCommand) Run() error {
	if _, err := os.Stat(cmd.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("key store not found: %s", cmd.DatabasePath)
	}

	store, err := keystore.New(keystore.Config{
		DatabasePath:  cmd.DatabasePath,
		EncryptionKey: cmd.EncryptionKey,
	})
	if err != nil {
		return fmt.Errorf("failed to open key store: %w", err)
	}
	defer store.Close()

	accounts, err := store.Accounts()
	if err != nil {
		return err
	}

	count, err := store.Count()
	if err != nil {
		return err
	}

	for _, addr := range accounts {
		fmt.Fprintln(cmd.out, addr.Hex())
	}
	fmt.Fprintf(cmd.out, "\n%d accounts, %d keys\n", len(accounts), count)

	return nil
}
