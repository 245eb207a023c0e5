package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGethKeystoreDir(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"linux", filepath.Join("/home/alice", ".ethereum", "keystore")},
		{"freebsd", filepath.Join("/home/alice", ".ethereum", "keystore")},
		{"darwin", filepath.Join("/home/alice", "Library", "Ethereum", "keystore")},
		{"windows", filepath.Join(`C:\Users\alice\AppData\Roaming`, "Ethereum", "keystore")},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := DefaultGethKeystoreDir(tt.goos, "/home/alice", `C:\Users\alice\AppData\Roaming`)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"KEYSTORE_DATABASE_PATH", "KEYSTORE_ENCRYPTION_KEY", "GETH_KEYSTORE_DIR",
		"GETH_SYNC_ENABLED", "GETH_SYNC_SCHEDULE", "LOG_LEVEL", "LOG_FORMAT",
		"METRICS_TEXTFILE", "AUDIT_DIR",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", "/home/alice")

	cfg := NewConfig()

	assert.Equal(t, DefaultDatabasePath, cfg.Keystore.DatabasePath)
	assert.Empty(t, cfg.Keystore.EncryptionKey)
	assert.False(t, cfg.GethSync.Enabled)
	assert.Equal(t, DefaultGethSyncSchedule, cfg.GethSync.Schedule)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Metrics.TextfilePath)
	assert.Empty(t, cfg.Audit.Dir)
	assert.NotEmpty(t, cfg.Geth.KeystoreDir)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("KEYSTORE_DATABASE_PATH", "/tmp/keys.db")
	t.Setenv("GETH_KEYSTORE_DIR", "/data/geth/keystore")
	t.Setenv("GETH_SYNC_ENABLED", "true")
	t.Setenv("GETH_SYNC_SCHEDULE", "0 * * * *")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUDIT_DIR", "/var/log/keymigrate")

	cfg := NewConfig()

	assert.Equal(t, "/tmp/keys.db", cfg.Keystore.DatabasePath)
	assert.Equal(t, "/data/geth/keystore", cfg.Geth.KeystoreDir)
	assert.True(t, cfg.GethSync.Enabled)
	assert.Equal(t, "0 * * * *", cfg.GethSync.Schedule)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/keymigrate", cfg.Audit.Dir)
}
