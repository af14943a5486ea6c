package wallet

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/apperr"
	"github.com/kampusgig/backend/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Wallet{}, &models.LedgerTransaction{}))
	return db
}

func TestHoldThenSummary(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	worker := uuid.New()
	engagement := uuid.New()

	err := svc.Hold(db, worker, engagement, 5000, "ESCROW-"+engagement.String(), "escrow")
	require.NoError(t, err)

	sum, err := svc.GetSummary(worker)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.Balance)
	assert.Equal(t, int64(5000), sum.Holds)
	assert.Equal(t, int64(-5000), sum.Available)
}

func TestHoldRejectsNonPositiveAmount(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	err := svc.Hold(db, uuid.New(), uuid.New(), 0, "REF-0", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.Hold(db, uuid.New(), uuid.New(), -100, "REF-1", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.LedgerTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestHoldDuplicateForEngagement(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	worker := uuid.New()
	engagement := uuid.New()

	require.NoError(t, svc.Hold(db, worker, engagement, 5000, "REF-A", ""))

	err := svc.Hold(db, worker, engagement, 5000, "REF-B", "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	sum, err := svc.GetSummary(worker)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum.Holds)
}

func TestReleaseCreditsBalanceAndFlipsHold(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	worker := uuid.New()
	engagement := uuid.New()
	require.NoError(t, svc.Hold(db, worker, engagement, 5000, "REF-A", ""))

	released, err := svc.Release(engagement)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerKindRelease, released.Kind)
	assert.Equal(t, models.LedgerStatusCompleted, released.Status)
	assert.Equal(t, int64(5000), released.Amount)

	sum, err := svc.GetSummary(worker)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum.Balance)
	assert.Equal(t, int64(0), sum.Holds)
	assert.Equal(t, int64(5000), sum.Available)

	// the hold row was flipped in place, not replaced
	var rows []models.LedgerTransaction
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, released.ID, rows[0].ID)
}

func TestReleaseTwiceDoesNotDoublePay(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	worker := uuid.New()
	engagement := uuid.New()
	require.NoError(t, svc.Hold(db, worker, engagement, 5000, "REF-A", ""))

	_, err := svc.Release(engagement)
	require.NoError(t, err)

	_, err = svc.Release(engagement)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	sum, err := svc.GetSummary(worker)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum.Balance)
}

func TestReleaseWithoutHold(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	_, err := svc.Release(uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCancelHoldVoidsClaim(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	worker := uuid.New()
	engagement := uuid.New()
	require.NoError(t, svc.Hold(db, worker, engagement, 3000, "REF-A", ""))

	require.NoError(t, svc.CancelHold(db, engagement))

	sum, err := svc.GetSummary(worker)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.Balance)
	assert.Equal(t, int64(0), sum.Holds)

	var row models.LedgerTransaction
	require.NoError(t, db.First(&row, "engagement_id = ?", engagement).Error)
	assert.Equal(t, models.LedgerKindHold, row.Kind)
	assert.Equal(t, models.LedgerStatusCancelled, row.Status)

	// nothing left to cancel
	err = svc.CancelHold(db, engagement)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListTransactionsWithoutWallet(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	owner := uuid.New()
	txs, err := svc.ListTransactions(owner)
	require.NoError(t, err)
	assert.Empty(t, txs)

	// listing must not create the wallet as a side effect
	var count int64
	require.NoError(t, db.Model(&models.Wallet{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	owner := uuid.New()
	w, err := svc.EnsureWallet(db, owner)
	require.NoError(t, err)

	older := models.LedgerTransaction{
		ID:        uuid.New(),
		WalletID:  w.ID,
		Amount:    1000,
		Kind:      models.LedgerKindCredit,
		Status:    models.LedgerStatusCompleted,
		Reference: "REF-OLD",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := models.LedgerTransaction{
		ID:        uuid.New(),
		WalletID:  w.ID,
		Amount:    2000,
		Kind:      models.LedgerKindCredit,
		Status:    models.LedgerStatusCompleted,
		Reference: "REF-NEW",
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	txs, err := svc.ListTransactions(owner)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "REF-NEW", txs[0].Reference)
	assert.Equal(t, "REF-OLD", txs[1].Reference)
}

func TestEnsureWalletIsIdempotent(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	owner := uuid.New()
	first, err := svc.EnsureWallet(db, owner)
	require.NoError(t, err)
	second, err := svc.EnsureWallet(db, owner)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
