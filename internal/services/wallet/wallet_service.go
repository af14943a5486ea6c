package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/apperr"
	"github.com/kampusgig/backend/internal/models"
)

// Service owns all balance and hold bookkeeping. Nothing else writes to
// wallets or the ledger.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type Summary struct {
	Balance   int64 `json:"balance"`
	Holds     int64 `json:"holds"`
	Available int64 `json:"available"` // balance - holds; can go negative while unfunded holds exist
}

// EnsureWallet returns the owner's wallet, creating it on first use.
// Safe to call inside a caller-owned transaction.
func (s *Service) EnsureWallet(tx *gorm.DB, ownerID uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	if err := tx.Where(models.Wallet{OwnerID: ownerID}).FirstOrCreate(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetSummary reports settled balance, pending hold total and the spendable
// remainder. Creates the wallet lazily; no other side effects.
func (s *Service) GetSummary(ownerID uuid.UUID) (Summary, error) {
	var out Summary
	w, err := s.EnsureWallet(s.DB, ownerID)
	if err != nil {
		return out, err
	}

	var holds int64
	if err := s.DB.Model(&models.LedgerTransaction{}).
		Where("wallet_id = ? AND kind = ? AND status = ?", w.ID, models.LedgerKindHold, models.LedgerStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&holds).Error; err != nil {
		return out, err
	}

	out.Balance = w.Balance
	out.Holds = holds
	out.Available = w.Balance - holds
	return out, nil
}

// ListTransactions returns the owner's ledger, newest first. A wallet that
// does not exist yet is an empty history, not an error, and is not created.
func (s *Service) ListTransactions(ownerID uuid.UUID) ([]models.LedgerTransaction, error) {
	var w models.Wallet
	if err := s.DB.Where("owner_id = ?", ownerID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.LedgerTransaction{}, nil
		}
		return nil, err
	}

	var txs []models.LedgerTransaction
	if err := s.DB.Where("wallet_id = ?", w.ID).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Hold records a pending escrow claim against the payee's wallet. It never
// touches Balance; only the holds figure moves. Must run inside the caller's
// transaction so the claim commits together with the funding step.
// Payer-side fund sourcing is the caller's precondition, not handled here.
func (s *Service) Hold(tx *gorm.DB, payeeID, engagementID uuid.UUID, amount int64, reference, description string) error {
	if amount <= 0 {
		return apperr.Validation("hold amount must be greater than zero")
	}

	var existing int64
	if err := tx.Model(&models.LedgerTransaction{}).
		Where("engagement_id = ? AND kind = ? AND status = ?", engagementID, models.LedgerKindHold, models.LedgerStatusPending).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return apperr.Conflict("escrow already held for this engagement")
	}

	w, err := s.EnsureWallet(tx, payeeID)
	if err != nil {
		return err
	}

	ledger := models.LedgerTransaction{
		ID:           uuid.New(),
		WalletID:     w.ID,
		EngagementID: &engagementID,
		Amount:       amount,
		Kind:         models.LedgerKindHold,
		Status:       models.LedgerStatusPending,
		Reference:    reference,
		Description:  description,
	}
	return tx.Create(&ledger).Error
}

// Release settles the engagement's escrow: the unique pending hold flips to a
// completed release and the payee balance goes up by the held amount, in one
// transaction. A second call finds no pending hold and reports NotFound
// without mutating anything, so double payment cannot happen. The flip is a
// conditional update keyed on the pending status — two racing callers cannot
// both see RowsAffected == 1.
func (s *Service) Release(engagementID uuid.UUID) (*models.LedgerTransaction, error) {
	var released models.LedgerTransaction

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var hold models.LedgerTransaction
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("engagement_id = ? AND kind = ? AND status = ?",
				engagementID, models.LedgerKindHold, models.LedgerStatusPending).
			First(&hold).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("no pending hold for this engagement")
			}
			return err
		}

		res := tx.Model(&models.LedgerTransaction{}).
			Where("id = ? AND kind = ? AND status = ?",
				hold.ID, models.LedgerKindHold, models.LedgerStatusPending).
			Updates(map[string]interface{}{
				"kind":   models.LedgerKindRelease,
				"status": models.LedgerStatusCompleted,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to a concurrent release
			return apperr.NotFound("no pending hold for this engagement")
		}

		inc := tx.Model(&models.Wallet{}).
			Where("id = ?", hold.WalletID).
			Update("balance", gorm.Expr("balance + ?", hold.Amount))
		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			return fmt.Errorf("wallet %s not found for hold %s", hold.WalletID, hold.ID)
		}

		hold.Kind = models.LedgerKindRelease
		hold.Status = models.LedgerStatusCompleted
		released = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &released, nil
}

// CancelHold voids the engagement's pending hold without crediting anyone:
// the row flips to cancelled and the payee's holds figure drops. Runs inside
// the caller's transaction (the engagement cancel path).
func (s *Service) CancelHold(tx *gorm.DB, engagementID uuid.UUID) error {
	res := tx.Model(&models.LedgerTransaction{}).
		Where("engagement_id = ? AND kind = ? AND status = ?",
			engagementID, models.LedgerKindHold, models.LedgerStatusPending).
		Update("status", models.LedgerStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("no pending hold for this engagement")
	}
	return nil
}
