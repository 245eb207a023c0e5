// Package keystore provides SQLite-backed storage for imported keys,
// indexed by account address and key id.
package keystore

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/keymigrate/internal/crypto"
	"github.com/mrlokans/keymigrate/internal/entities"
	"github.com/mrlokans/keymigrate/internal/keyfile"
)

// EnvEncryptionKey is the environment variable for the at-rest encryption key
const EnvEncryptionKey = "KEYSTORE_ENCRYPTION_KEY"

var (
	ErrNilRecord      = errors.New("key record is nil")
	ErrMissingAddress = errors.New("key record has no address")
	ErrSealedPayload  = errors.New("stored key is sealed but no encryption key is configured")
)

// Store persists keys. It is not safe for concurrent importers.
type Store struct {
	db     *gorm.DB
	sealer *crypto.Sealer
}

// Config holds configuration for the key store
type Config struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is an optional base64-encoded 32-byte key. When empty the
	// EnvEncryptionKey variable is consulted; when both are empty payloads are
	// stored as plain keyfile JSON (which is itself encrypted key material).
	EncryptionKey string
}

// New opens (creating if needed) the key store database
func New(cfg Config) (*Store, error) {
	sealer, err := resolveSealer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.StoredKey{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		sealer: sealer,
	}, nil
}

func resolveSealer(cfg Config) (*crypto.Sealer, error) {
	key := cfg.EncryptionKey
	if key == "" {
		key = os.Getenv(EnvEncryptionKey)
	}
	if key == "" {
		return nil, nil
	}
	return crypto.NewSealerFromBase64(key)
}

// ImportKey stores a key record. A record with an id that is already
// present replaces the stored one.
func (s *Store) ImportKey(record *entities.KeyRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	if record.Address.IsZero() {
		return fmt.Errorf("%w: key %s", ErrMissingAddress, record.ID)
	}

	payload, err := keyfile.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode key %s: %w", record.ID, err)
	}

	address := record.Address.String()
	sealed := false
	if s.sealer != nil {
		payload, err = s.sealer.Seal(payload, []byte(address))
		if err != nil {
			return fmt.Errorf("failed to seal key %s: %w", record.ID, err)
		}
		sealed = true
	}

	row := &entities.StoredKey{
		KeyID:   record.ID.String(),
		Address: address,
		Version: record.Version,
		Payload: payload,
		Sealed:  sealed,
	}

	// Upsert: update if exists, create if not
	result := s.db.Where("key_id = ?", row.KeyID).
		Assign(map[string]interface{}{
			"address":    address,
			"version":    record.Version,
			"payload":    payload,
			"sealed":     sealed,
			"updated_at": time.Now(),
		}).
		FirstOrCreate(row)

	if result.Error != nil {
		return fmt.Errorf("failed to save key %s: %w", record.ID, result.Error)
	}

	return nil
}

// Account returns the most recently imported key for an address, or nil
// when the store has none.
func (s *Store) Account(address entities.Address) (*entities.KeyRecord, error) {
	var row entities.StoredKey
	result := s.db.Where("address = ?", address.String()).Order("updated_at DESC").First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key for %s: %w", address, result.Error)
	}

	return s.decode(&row)
}

// Get returns the key with the given id, or nil when absent.
func (s *Store) Get(id uuid.UUID) (*entities.KeyRecord, error) {
	var row entities.StoredKey
	result := s.db.Where("key_id = ?", id.String()).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", id, result.Error)
	}

	return s.decode(&row)
}

// Accounts lists every address with at least one stored key, sorted.
func (s *Store) Accounts() ([]entities.Address, error) {
	var raw []string
	result := s.db.Model(&entities.StoredKey{}).Distinct().Order("address").Pluck("address", &raw)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", result.Error)
	}

	addrs := make([]entities.Address, 0, len(raw))
	for _, r := range raw {
		addr, err := entities.ParseAddress(r)
		if err != nil {
			return nil, fmt.Errorf("corrupt address in store: %w", err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// Count returns the number of stored keys
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&entities.StoredKey{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count keys: %w", err)
	}
	return n, nil
}

// Delete removes every key stored for an address and returns how many
// were removed
func (s *Store) Delete(address entities.Address) (int64, error) {
	result := s.db.Where("address = ?", address.String()).Delete(&entities.StoredKey{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete keys for %s: %w", address, result.Error)
	}
	return result.RowsAffected, nil
}

func (s *Store) decode(row *entities.StoredKey) (*entities.KeyRecord, error) {
	payload := row.Payload
	if row.Sealed {
		if s.sealer == nil {
			return nil, fmt.Errorf("%w: key %s", ErrSealedPayload, row.KeyID)
		}
		opened, err := s.sealer.Open(payload, []byte(row.Address))
		if err != nil {
			return nil, fmt.Errorf("failed to open key %s: %w", row.KeyID, err)
		}
		payload = opened
	}

	record, err := keyfile.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("corrupt key %s in store: %w", row.KeyID, err)
	}
	return record, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
