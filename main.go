package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/keymigrate/internal/cli"
	"github.com/mrlokans/keymigrate/internal/config"
	"github.com/mrlokans/keymigrate/internal/entrypoint"
	"github.com/mrlokans/keymigrate/internal/logger"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// With no command, run as a sync daemon when enabled in the environment
	if len(os.Args) < 2 {
		if !cfg.GethSync.Enabled {
			printUsage()
			os.Exit(1)
		}
		if err := entrypoint.Run(cfg, Version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "geth-import":
		cmd = cli.NewGethImportCommand(cfg)
	case "list-keys":
		cmd = cli.NewListKeysCommand(cfg)
	case "delete-key":
		cmd = cli.NewDeleteKeyCommand(cfg)
	case "geth-sync":
		cmd = cli.NewGethSyncCommand(cfg, Version)

	case "version":
		fmt.Printf("keymigrate %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  geth-import   Import keys from a geth keystore directory\n")
	fmt.Fprintf(os.Stderr, "  list-keys     List accounts in the local key store\n")
	fmt.Fprintf(os.Stderr, "  delete-key    Remove an account's keys from the local key store\n")
	fmt.Fprintf(os.Stderr, "  geth-sync     Import the geth keystore on a schedule until interrupted\n")
	fmt.Fprintf(os.Stderr, "  version       Print version information\n")
	fmt.Fprintf(os.Stderr, "\nWith no command and GETH_SYNC_ENABLED=true, runs geth-sync with settings from the environment.\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
