package keystore

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/keymigrate/internal/crypto"
	"github.com/mrlokans/keymigrate/internal/entities"
)

const (
	addrA = "3f49624084b67849c7b4e805c5988c21a430f9d9"
	addrB = "5ba4dcf897e97c2bdf8315b9ef26c13c085988cf"
)

func setupTestStore(t *testing.T, encryptionKey string) *Store {
	t.Helper()
	t.Setenv(EnvEncryptionKey, "")

	store, err := New(Config{
		DatabasePath:  filepath.Join(t.TempDir(), "keystore.db"),
		EncryptionKey: encryptionKey,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func testRecord(address string, id uuid.UUID) *entities.KeyRecord {
	rec := &entities.KeyRecord{
		ID:      id,
		Version: 3,
		Crypto: entities.CryptoParams{
			Cipher:       entities.CipherAES128CTR,
			CipherParams: entities.CipherParams{IV: make([]byte, 16)},
			CipherText:   []byte{0xde, 0xad, 0xbe, 0xef},
			KDF:          entities.KDFScrypt,
			Scrypt:       &entities.ScryptParams{DKLen: 32, N: 262144, R: 8, P: 1, Salt: []byte{0x01, 0x02}},
			MAC:          make([]byte, 32),
		},
	}
	if address != "" {
		rec.Address = entities.MustParseAddress(address)
	}
	return rec
}

func TestNew(t *testing.T) {
	t.Run("creates store without encryption key", func(t *testing.T) {
		store := setupTestStore(t, "")
		assert.Nil(t, store.sealer)
	})

	t.Run("fails with invalid encryption key", func(t *testing.T) {
		_, err := New(Config{
			DatabasePath:  filepath.Join(t.TempDir(), "keystore.db"),
			EncryptionKey: "invalid-key",
		})
		assert.Error(t, err)
	})

	t.Run("reads encryption key from environment", func(t *testing.T) {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		t.Setenv(EnvEncryptionKey, key)

		store, err := New(Config{DatabasePath: filepath.Join(t.TempDir(), "keystore.db")})
		require.NoError(t, err)
		defer store.Close()
		assert.NotNil(t, store.sealer)
	})
}

func TestImportKeyAndAccount(t *testing.T) {
	store := setupTestStore(t, "")

	t.Run("import and retrieve by address", func(t *testing.T) {
		rec := testRecord(addrA, uuid.New())
		require.NoError(t, store.ImportKey(rec))

		got, err := store.Account(entities.MustParseAddress(addrA))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec, got)
	})

	t.Run("unknown address returns nil", func(t *testing.T) {
		got, err := store.Account(entities.MustParseAddress(addrB))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("record without address is rejected", func(t *testing.T) {
		err := store.ImportKey(testRecord("", uuid.New()))
		assert.ErrorIs(t, err, ErrMissingAddress)
	})

	t.Run("nil record is rejected", func(t *testing.T) {
		assert.ErrorIs(t, store.ImportKey(nil), ErrNilRecord)
	})
}

func TestImportKey_SameIDReplaces(t *testing.T) {
	store := setupTestStore(t, "")
	id := uuid.New()

	require.NoError(t, store.ImportKey(testRecord(addrA, id)))
	require.NoError(t, store.ImportKey(testRecord(addrA, id)))

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGet(t *testing.T) {
	store := setupTestStore(t, "")
	id := uuid.MustParse("62a0ad73-556d-496a-8e1c-0783d30d3ace")
	require.NoError(t, store.ImportKey(testRecord(addrA, id)))

	got, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Crypto.Scrypt)
	assert.Equal(t, 262144, got.Crypto.Scrypt.N)
	assert.Equal(t, 8, got.Crypto.Scrypt.R)
	assert.Equal(t, 1, got.Crypto.Scrypt.P)

	missing, err := store.Get(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountsAndDelete(t *testing.T) {
	store := setupTestStore(t, "")
	require.NoError(t, store.ImportKey(testRecord(addrB, uuid.New())))
	require.NoError(t, store.ImportKey(testRecord(addrA, uuid.New())))
	require.NoError(t, store.ImportKey(testRecord(addrA, uuid.New())))

	accounts, err := store.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []entities.Address{
		entities.MustParseAddress(addrA),
		entities.MustParseAddress(addrB),
	}, accounts)

	deleted, err := store.Delete(entities.MustParseAddress(addrA))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	got, err := store.Account(entities.MustParseAddress(addrA))
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSealedStore(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "keystore.db")
	t.Setenv(EnvEncryptionKey, "")

	store, err := New(Config{DatabasePath: dbPath, EncryptionKey: key})
	require.NoError(t, err)

	rec := testRecord(addrA, uuid.New())
	require.NoError(t, store.ImportKey(rec))

	var row entities.StoredKey
	require.NoError(t, store.db.First(&row).Error)
	assert.True(t, row.Sealed)
	assert.NotContains(t, string(row.Payload), "aes-128-ctr")

	got, err := store.Account(rec.Address)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	require.NoError(t, store.Close())

	t.Run("reopened without key cannot read sealed rows", func(t *testing.T) {
		plain, err := New(Config{DatabasePath: dbPath})
		require.NoError(t, err)
		defer plain.Close()

		_, err = plain.Account(rec.Address)
		assert.ErrorIs(t, err, ErrSealedPayload)
	})
}
