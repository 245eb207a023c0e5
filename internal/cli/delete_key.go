package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/keymigrate/internal/config"
	"github.com/mrlokans/keymigrate/internal/entities"
	"github.com/mrlokans/keymigrate/internal/keystore"
)

// DeleteKeyCommand removes every key stored for one account
type DeleteKeyCommand struct {
	DatabasePath  string
	EncryptionKey string
	Address       string

	out io.Writer
}

func NewDeleteKeyCommand(cfg *config.Config) *DeleteKeyCommand {
	return &DeleteKeyCommand{
		DatabasePath:  cfg.Keystore.DatabasePath,
		EncryptionKey: cfg.Keystore.EncryptionKey,
		out:           os.Stdout,
	}
}

func (cmd *DeleteKeyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete-key", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the local key store database")
	fs.StringVar(&cmd.Address, "address", "", "Account address whose keys are removed (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s delete-key -address <hex> [-db <path>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove every key stored for an account from the local key store.\n")
		fmt.Fprintf(os.Stderr, "The geth keystore is not touched; the next import brings the keys back.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Address == "" {
		return fmt.Errorf("account address is required (-address)")
	}
	return nil
}

func (cmd *DeleteKeyCommand) Run() error {
	addr, err := entities.ParseAddress(cmd.Address)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", cmd.Address, err)
	}

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

	deleted, err := store.Delete(addr)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("no keys stored for %s", addr.Hex())
	}

	fmt.Fprintf(cmd.out, "Deleted %d key(s) for %s\n", deleted, addr.Hex())
	return nil
}
