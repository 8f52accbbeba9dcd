package db

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateEmail is returned when a registration collides with
	// an existing account's email.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrUserNotFound is returned by lookups that match no account.
	ErrUserNotFound = errors.New("user not found")
)

// NewAPIKey generates the opaque B2B credential attached to an account
// at creation. Stable for the account's lifetime.
func NewAPIKey() string {
	return uuid.NewString()
}

// CreateUser inserts a new account row. A unique-constraint violation
// on email is surfaced as ErrDuplicateEmail.
func CreateUser(db *gorm.DB, user *User) error {
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindUserByEmail looks up an account by its email, case-sensitive as
// stored.
func FindUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByAPIKey looks up the account owning the given API key.
func FindUserByAPIKey(db *gorm.DB, apiKey string) (*User, error) {
	var user User
	if err := db.Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID looks up an account by its primary key. Used for
// session-derived lookups.
func FindUserByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
