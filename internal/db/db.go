package db

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"linguaflow/internal/config"
)

// Connect opens the GORM SQLite database at cfg.DatabasePath, creating
// the parent directory if needed, and migrates the core tables.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	path := strings.TrimSpace(cfg.DatabasePath)
	if path == "" {
		return nil, errors.New("APP_DATABASE_PATH is required")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	// TranslateError lets the store surface unique-constraint hits as
	// gorm.ErrDuplicatedKey instead of a raw sqlite error string.
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// SQLite permits a single writer at a time. One pooled connection
	// keeps concurrent ledger transactions serialized instead of
	// surfacing SQLITE_BUSY to callers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&User{}, &Transaction{}); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSeedUser bootstraps a single account from config the first time
// the service starts against an empty database. If seed credentials are
// not configured, or any user already exists, nothing happens.
//
// The seed account exists for local development and demos only; it is
// deliberately opt-in rather than baked into the binary.
func EnsureSeedUser(db *gorm.DB, cfg *config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	seed := &User{
		Email:        cfg.SeedEmail,
		PasswordHash: string(hash),
		Name:         cfg.SeedName,
		Credits:      cfg.SeedCredits,
		APIKey:       NewAPIKey(),
	}

	if err := db.Create(seed).Error; err != nil {
		return err
	}

	log.Printf("seeded account %s with %d credits", seed.Email, seed.Credits)
	return nil
}
