package engagement

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/apperr"
	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/notify"
	"github.com/kampusgig/backend/internal/services/dispute"
	"github.com/kampusgig/backend/internal/services/wallet"
)

// Service is the state machine over funded engagements:
//
//	active --deposit--> funded --submit--> submitted --approve--> completed
//	active/funded/submitted --dispute--> disputed
//	active/funded --cancel--> cancelled
//
// Order-variant engagements are born funded, so they never see deposit.
type Service struct {
	DB       *gorm.DB
	Wallet   *wallet.Service
	Disputes *dispute.Service
	Notifier notify.Notifier
}

func NewService(db *gorm.DB, walletService *wallet.Service, disputeService *dispute.Service, notifier notify.Notifier) *Service {
	return &Service{DB: db, Wallet: walletService, Disputes: disputeService, Notifier: notifier}
}

func (s *Service) load(engagementID uuid.UUID) (*models.Engagement, error) {
	var eng models.Engagement
	if err := s.DB.First(&eng, "id = ?", engagementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("engagement not found")
		}
		return nil, err
	}
	return &eng, nil
}

// Get returns the engagement for either party.
func (s *Service) Get(engagementID, callerID uuid.UUID) (*models.Engagement, error) {
	eng, err := s.load(engagementID)
	if err != nil {
		return nil, err
	}
	if eng.PayerID != callerID && eng.WorkerID != callerID {
		return nil, apperr.Forbidden("you are not part of this engagement")
	}
	return eng, nil
}

// ListForUser returns engagements where the caller is payer or worker,
// newest first.
func (s *Service) ListForUser(userID uuid.UUID) ([]models.Engagement, error) {
	var out []models.Engagement
	if err := s.DB.Preload("Gig").
		Where("payer_id = ? OR worker_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Deposit funds a contract-variant engagement: the status flip to funded and
// the escrow hold commit together. Payer only. Payer-side fund sourcing is an
// external precondition; only the payee-side claim is recorded here.
func (s *Service) Deposit(engagementID, payerID uuid.UUID) (*models.Engagement, error) {
	eng, err := s.load(engagementID)
	if err != nil {
		return nil, err
	}
	if eng.PayerID != payerID {
		return nil, apperr.Forbidden("only the payer can fund this engagement")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Engagement
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&current, "id = ?", engagementID).Error; err != nil {
			return err
		}
		if current.Status != models.EngagementStatusActive {
			return apperr.InvalidState("engagement is not awaiting funding")
		}

		current.Status = models.EngagementStatusFunded
		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		ref := fmt.Sprintf("ESCROW-%s", current.ID)
		if err := s.Wallet.Hold(tx, current.WorkerID, current.ID, current.Amount, ref, "Escrow deposit"); err != nil {
			return err
		}

		*eng = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(eng.WorkerID, "Engagement funded", "Escrow is in place, you can start working.", "engagement",
		map[string]interface{}{"engagement_id": eng.ID, "amount": eng.Amount})

	return eng, nil
}

// SubmitWork records the worker's deliverables and moves funded → submitted.
func (s *Service) SubmitWork(engagementID, workerID uuid.UUID, deliverableURL, notes string) (*models.Engagement, error) {
	eng, err := s.load(engagementID)
	if err != nil {
		return nil, err
	}
	if eng.WorkerID != workerID {
		return nil, apperr.Forbidden("only the assigned worker can submit work")
	}
	if eng.Status != models.EngagementStatusFunded {
		return nil, apperr.InvalidState("work can only be submitted on a funded engagement")
	}

	now := time.Now()
	eng.Status = models.EngagementStatusSubmitted
	eng.SubmissionURL = deliverableURL
	eng.SubmissionNotes = notes
	eng.SubmittedAt = &now

	if err := s.DB.Save(eng).Error; err != nil {
		return nil, err
	}

	s.Notifier.Notify(eng.PayerID, "Work submitted", "The worker submitted deliverables for review.", "engagement",
		map[string]interface{}{"engagement_id": eng.ID, "url": deliverableURL})

	return eng, nil
}

// ApproveWork accepts the submission. The approval commits on its own —
// completed status is the durable proof the work was accepted — and the
// escrow release runs after the commit. A failed release is logged and
// retried out of band; it never rolls the approval back.
func (s *Service) ApproveWork(engagementID, payerID uuid.UUID) (*models.Engagement, error) {
	eng, err := s.load(engagementID)
	if err != nil {
		return nil, err
	}
	if eng.PayerID != payerID {
		return nil, apperr.Forbidden("only the payer can approve work")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Engagement
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&current, "id = ?", engagementID).Error; err != nil {
			return err
		}
		if current.Status != models.EngagementStatusSubmitted {
			return apperr.InvalidState("only submitted work can be approved")
		}

		now := time.Now()
		current.Status = models.EngagementStatusCompleted
		current.CompletedAt = &now
		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Gig{}).
			Where("id = ?", current.GigID).
			Update("status", models.GigStatusClosed).Error; err != nil {
			return err
		}

		*eng = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.Wallet.Release(engagementID); err != nil {
		log.Printf("[ApproveWork] escrow release failed for engagement %s: %v", engagementID, err)
	} else {
		s.Notifier.Notify(eng.WorkerID, "Payment released", "Escrow was released to your balance.", "wallet",
			map[string]interface{}{"engagement_id": eng.ID, "amount": eng.Amount})
	}

	s.Notifier.Notify(eng.WorkerID, "Work approved", "The payer approved your submission.", "engagement",
		map[string]interface{}{"engagement_id": eng.ID})

	return eng, nil
}

// Cancel aborts an engagement that has not gone past funding. A funded
// engagement's pending hold is voided in the same transaction, and the gig
// reopens for new offers.
func (s *Service) Cancel(engagementID, callerID uuid.UUID) (*models.Engagement, error) {
	eng, err := s.load(engagementID)
	if err != nil {
		return nil, err
	}
	if eng.PayerID != callerID && eng.WorkerID != callerID {
		return nil, apperr.Forbidden("you are not part of this engagement")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Engagement
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&current, "id = ?", engagementID).Error; err != nil {
			return err
		}
		if current.Status != models.EngagementStatusActive && current.Status != models.EngagementStatusFunded {
			return apperr.InvalidState("only active or funded engagements can be cancelled")
		}

		if current.Status == models.EngagementStatusFunded {
			if err := s.Wallet.CancelHold(tx, current.ID); err != nil {
				return err
			}
		}

		current.Status = models.EngagementStatusCancelled
		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Gig{}).
			Where("id = ?", current.GigID).
			Update("status", models.GigStatusOpen).Error; err != nil {
			return err
		}

		*eng = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	other := eng.WorkerID
	if callerID == eng.WorkerID {
		other = eng.PayerID
	}
	s.Notifier.Notify(other, "Engagement cancelled", "The engagement was cancelled.", "engagement",
		map[string]interface{}{"engagement_id": eng.ID})

	return eng, nil
}

// RaiseDispute freezes the engagement in disputed. Either party may raise
// one, but not once the engagement is settled or dead. Order-variant
// engagements additionally get a Dispute record in the same transaction.
func (s *Service) RaiseDispute(engagementID, callerID uuid.UUID, description string) (*models.Engagement, error) {
	eng, err := s.load(engagementID)
	if err != nil {
		return nil, err
	}
	if eng.PayerID != callerID && eng.WorkerID != callerID {
		return nil, apperr.Forbidden("you are not part of this engagement")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Engagement
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&current, "id = ?", engagementID).Error; err != nil {
			return err
		}

		switch current.Status {
		case models.EngagementStatusActive, models.EngagementStatusFunded, models.EngagementStatusSubmitted:
			// disputable
		default:
			return apperr.InvalidState("engagement can no longer be disputed")
		}

		current.Status = models.EngagementStatusDisputed
		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		if current.Variant == models.EngagementVariantOrder {
			if _, err := s.Disputes.Open(tx, current.ID, callerID, description); err != nil {
				return err
			}
		}

		*eng = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	other := eng.WorkerID
	if callerID == eng.WorkerID {
		other = eng.PayerID
	}
	s.Notifier.Notify(other, "Dispute raised", description, "dispute",
		map[string]interface{}{"engagement_id": eng.ID})

	return eng, nil
}
