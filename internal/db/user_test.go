package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"linguaflow/internal/config"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")}
	db, err := Connect(cfg)
	require.NoError(t, err)
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string, credits int64) *User {
	t.Helper()
	user := &User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Credits:      credits,
		APIKey:       NewAPIKey(),
	}
	require.NoError(t, CreateUser(db, user))
	return user
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)

	newTestUser(t, db, "alice@example.com", 50)

	dup := &User{
		Email:        "alice@example.com",
		PasswordHash: "y",
		APIKey:       NewAPIKey(),
	}
	err := CreateUser(db, dup)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestFindUserByEmail(t *testing.T) {
	db := openTestDB(t)

	created := newTestUser(t, db, "bob@example.com", 50)

	found, err := FindUserByEmail(db, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, int64(50), found.Credits)

	_, err = FindUserByEmail(db, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserByAPIKey(t *testing.T) {
	db := openTestDB(t)

	created := newTestUser(t, db, "carol@example.com", 0)

	found, err := FindUserByAPIKey(db, created.APIKey)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = FindUserByAPIKey(db, "unknown-key")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserByID(t *testing.T) {
	db := openTestDB(t)

	created := newTestUser(t, db, "dave@example.com", 0)

	found, err := FindUserByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave@example.com", found.Email)

	_, err = FindUserByID(db, created.ID+1000)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureSeedUser(t *testing.T) {
	cfg := &config.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
		SeedEmail:    "admin@example.com",
		SeedPassword: "password123",
		SeedName:     "Admin User",
		SeedCredits:  1000,
	}
	db, err := Connect(cfg)
	require.NoError(t, err)

	require.NoError(t, EnsureSeedUser(db, cfg))

	seed, err := FindUserByEmail(db, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), seed.Credits)
	assert.NotEmpty(t, seed.APIKey)

	// Idempotent: a second call against a non-empty store is a no-op.
	require.NoError(t, EnsureSeedUser(db, cfg))
	var count int64
	require.NoError(t, db.Model(&User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureSeedUserDisabledWithoutCredentials(t *testing.T) {
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")}
	db, err := Connect(cfg)
	require.NoError(t, err)

	require.NoError(t, EnsureSeedUser(db, cfg))

	var count int64
	require.NoError(t, db.Model(&User{}).Count(&count).Error)
	assert.Zero(t, count)
}
