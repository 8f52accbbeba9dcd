package db

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func balanceOf(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	user, err := FindUserByID(db, userID)
	require.NoError(t, err)
	return user.Credits
}

func TestChargeDeductsAndRecords(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db, "alice@example.com", 50)

	err := Charge(db, user.ID, 5, "Service usage", datatypes.JSONMap{"operation": "translate.docx"})
	require.NoError(t, err)

	assert.Equal(t, int64(45), balanceOf(t, db, user.ID))

	entries, err := ListTransactions(db, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].Amount)
	assert.Equal(t, TxTypeDebit, entries[0].Type)
	assert.Equal(t, "Service usage", entries[0].Description)
}

func TestChargeInsufficientLeavesStateUntouched(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db, "bob@example.com", 3)

	err := Charge(db, user.ID, 10, "Service usage", nil)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	assert.Equal(t, int64(3), balanceOf(t, db, user.ID))

	entries, err := ListTransactions(db, user.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChargeExactBalance(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db, "carol@example.com", 10)

	require.NoError(t, Charge(db, user.ID, 10, "Service usage", nil))
	assert.Zero(t, balanceOf(t, db, user.ID))
}

func TestChargeUnknownUser(t *testing.T) {
	db := openTestDB(t)

	err := Charge(db, 999, 1, "Service usage", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreditAddsAndRecords(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db, "dave@example.com", 50)

	balance, err := Credit(db, user.ID, 100, "Top-up", datatypes.JSONMap{"operation": "credits.topup"})
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	entries, err := ListTransactions(db, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(100), entries[0].Amount)
	assert.Equal(t, TxTypeCredit, entries[0].Type)
	assert.Equal(t, "Top-up", entries[0].Description)
}

func TestCreditUnknownUser(t *testing.T) {
	db := openTestDB(t)

	_, err := Credit(db, 999, 10, "Top-up", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db, "erin@example.com", 100)

	require.NoError(t, Charge(db, user.ID, 1, "first", nil))
	require.NoError(t, Charge(db, user.ID, 2, "second", nil))
	require.NoError(t, Charge(db, user.ID, 3, "third", nil))

	entries, err := ListTransactions(db, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Description)
	assert.Equal(t, "second", entries[1].Description)
}

// K simultaneous unit charges against a balance of K-1 must produce
// exactly K-1 successes, one insufficient-credits failure and a final
// balance of zero. This is the regression test for the lost-update
// race the conditional UPDATE in Charge closes.
func TestConcurrentChargesNeverOverdraw(t *testing.T) {
	db := openTestDB(t)

	const k = 10
	user := newTestUser(t, db, "frank@example.com", k-1)

	var wg sync.WaitGroup
	results := make(chan error, k)

	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- Charge(db, user.ID, 1, "Service usage", nil)
		}()
	}
	wg.Wait()
	close(results)

	successes, insufficient := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientCredits)
		insufficient++
	}

	assert.Equal(t, k-1, successes)
	assert.Equal(t, 1, insufficient)
	assert.Zero(t, balanceOf(t, db, user.ID))

	entries, err := ListTransactions(db, user.ID, k+1)
	require.NoError(t, err)
	assert.Len(t, entries, k-1)
}
