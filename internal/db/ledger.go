package db

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned by Charge when the account balance
// cannot cover the requested amount.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Charge atomically deducts amount credits from the user's balance and
// appends the matching debit ledger row. The balance check and the
// decrement are a single conditional UPDATE, so concurrent charges
// against the same account serialize correctly: the balance can never
// go negative and no update is lost.
func Charge(db *gorm.DB, userID uint, amount int64, description string, meta datatypes.JSONMap) error {
	if amount <= 0 {
		return errors.New("charge amount must be positive")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&User{}).
			Where("id = ? AND credits >= ?", userID, amount).
			Update("credits", gorm.Expr("credits - ?", amount))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Either the account is missing or the balance is short.
			var count int64
			if err := tx.Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return ErrInsufficientCredits
		}

		entry := &Transaction{
			UserID:      userID,
			Amount:      amount,
			Type:        TxTypeDebit,
			Description: description,
			Metadata:    meta,
		}
		return tx.Create(entry).Error
	})
}

// Credit unconditionally adds amount credits to the user's balance and
// appends the matching credit ledger row, both inside one transaction
// so the ledger never drifts from the balance. Returns the new balance.
func Credit(db *gorm.DB, userID uint, amount int64, description string, meta datatypes.JSONMap) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("credit amount must be positive")
	}

	var balance int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&User{}).
			Where("id = ?", userID).
			Update("credits", gorm.Expr("credits + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		entry := &Transaction{
			UserID:      userID,
			Amount:      amount,
			Type:        TxTypeCredit,
			Description: description,
			Metadata:    meta,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		var updated User
		if err := tx.Select("credits").Take(&updated, userID).Error; err != nil {
			return err
		}
		balance = updated.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ListTransactions returns the user's most recent ledger entries,
// newest first. limit <= 0 falls back to 50.
func ListTransactions(db *gorm.DB, userID uint, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Transaction
	err := db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
