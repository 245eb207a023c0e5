package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Keystore
		Geth
		GethSync
		Log
		Metrics
		Audit
	}

	Keystore struct {
		DatabasePath  string
		EncryptionKey string // Base64 AES-256 key; empty stores payloads unsealed
	}
	Geth struct {
		KeystoreDir string
	}
	GethSync struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
	Log struct {
		Level  string
		Format string // "console" or "json"
	}
	Metrics struct {
		TextfilePath string // Empty disables the textfile export
	}
	Audit struct {
		Dir string // Empty disables import reports
	}
)

// DefaultGethKeystoreDir returns where geth keeps its keystore on goos.
func DefaultGethKeystoreDir(goos, home, appData string) string {
	switch goos {
	case "windows":
		return filepath.Join(appData, "Ethereum", "keystore")
	case "darwin":
		return filepath.Join(home, "Library", "Ethereum", "keystore")
	default:
		return filepath.Join(home, ".ethereum", "keystore")
	}
}

func defaultGethKeystoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return DefaultGethKeystoreDir(runtime.GOOS, home, os.Getenv("APPDATA"))
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("keystore_database_path", DefaultDatabasePath)
	v.SetDefault("keystore_encryption_key", "")
	v.SetDefault("geth_keystore_dir", defaultGethKeystoreDir())
	v.SetDefault("geth_sync_enabled", false)
	v.SetDefault("geth_sync_schedule", DefaultGethSyncSchedule)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_textfile", "")
	v.SetDefault("audit_dir", "")

	return &Config{
		Keystore: Keystore{
			DatabasePath:  v.GetString("KEYSTORE_DATABASE_PATH"),
			EncryptionKey: v.GetString("KEYSTORE_ENCRYPTION_KEY"),
		},
		Geth: Geth{
			KeystoreDir: v.GetString("GETH_KEYSTORE_DIR"),
		},
		GethSync: GethSync{
			Enabled:  v.GetBool("GETH_SYNC_ENABLED"),
			Schedule: v.GetString("GETH_SYNC_SCHEDULE"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Metrics: Metrics{
			TextfilePath: v.GetString("METRICS_TEXTFILE"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
	}
}
