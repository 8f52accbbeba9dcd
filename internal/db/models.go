package db

import (
	"time"

	"gorm.io/datatypes"
)

// Transaction types recorded in the ledger.
const (
	TxTypeCredit = "credit"
	TxTypeDebit  = "debit"
)

// User represents an account that can sign in to the app and call the
// B2B API. Credits are the metering unit charged per paid operation;
// the balance must never go negative.
type User struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// Name is an optional display name.
	Name string `gorm:"size:128"`

	// Credits is the current balance. Mutated only through the ledger
	// functions in ledger.go so every change is paired with a
	// Transaction row.
	Credits int64 `gorm:"not null;default:0"`

	// APIKey is a long-lived opaque token for machine-to-machine
	// callers, generated once at account creation. There is no
	// rotation support yet.
	APIKey string `gorm:"uniqueIndex;size:64;not null"`
}

// Transaction is one immutable ledger entry: a single credit balance
// change. Rows are append-only; they are never updated or deleted.
type Transaction struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time

	// UserID links this entry to the account whose balance changed.
	UserID uint `gorm:"index;not null"`

	// Amount is the positive magnitude of the change; Type says which
	// direction ("credit" or "debit").
	Amount int64  `gorm:"not null"`
	Type   string `gorm:"size:16;not null"`

	// Description is a free-text label of the originating action.
	Description string `gorm:"size:255"`

	// Metadata holds arbitrary key/value details about the originating
	// operation (route, target language, fee) without schema changes.
	Metadata datatypes.JSONMap `gorm:"type:json"`
}
