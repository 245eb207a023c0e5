package config

// Default paths and schedules
const (
	// DefaultDatabasePath is the default path for the key store database
	DefaultDatabasePath = "./keystore.db"

	// DefaultGethSyncSchedule runs the geth sync every 30 minutes
	DefaultGethSyncSchedule = "*/30 * * * *"
)
