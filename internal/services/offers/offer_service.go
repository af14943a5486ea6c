package offers

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/apperr"
	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/notify"
	"github.com/kampusgig/backend/internal/services/wallet"
)

// VariantPolicy captures the only two places the application and proposal
// flows actually differ: where the agreed amount comes from, and whether
// escrow is held inside the acceptance itself.
type VariantPolicy struct {
	Offer           models.OfferVariant
	Engagement      models.EngagementVariant
	AmountFromOffer bool // proposer names the price; otherwise the gig budget applies
	FundOnAccept    bool // order: hold placed at creation, engagement starts funded
}

var (
	ApplicationPolicy = VariantPolicy{
		Offer:      models.OfferVariantApplication,
		Engagement: models.EngagementVariantContract,
	}
	ProposalPolicy = VariantPolicy{
		Offer:           models.OfferVariantProposal,
		Engagement:      models.EngagementVariantOrder,
		AmountFromOffer: true,
		FundOnAccept:    true,
	}
)

func PolicyFor(v models.OfferVariant) VariantPolicy {
	if v == models.OfferVariantProposal {
		return ProposalPolicy
	}
	return ApplicationPolicy
}

type Service struct {
	DB       *gorm.DB
	Wallet   *wallet.Service
	Notifier notify.Notifier
}

func NewService(db *gorm.DB, walletService *wallet.Service, notifier notify.Notifier) *Service {
	return &Service{DB: db, Wallet: walletService, Notifier: notifier}
}

type CreateInput struct {
	Message      string
	Attachment   string
	Amount       int64 // proposal variant only
	DeliveryDays int   // proposal variant only
}

// Create records a pending offer from actor on the gig. The gig owner cannot
// bid on their own gig, and a second offer from the same actor is a conflict
// (the composite unique index backstops the check).
func (s *Service) Create(actorID, gigID uuid.UUID, p VariantPolicy, in CreateInput) (*models.Offer, error) {
	var gig models.Gig
	if err := s.DB.First(&gig, "id = ?", gigID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("gig not found")
		}
		return nil, err
	}

	if gig.OwnerID == actorID {
		return nil, apperr.Validation("you cannot make an offer on your own gig")
	}
	if gig.Status != models.GigStatusOpen {
		return nil, apperr.InvalidState("gig is not open for offers")
	}

	if p.AmountFromOffer && in.Amount <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}

	var existing int64
	if err := s.DB.Model(&models.Offer{}).
		Where("gig_id = ? AND actor_id = ?", gigID, actorID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperr.Conflict("you already have an offer on this gig")
	}

	offer := models.Offer{
		ID:           uuid.New(),
		GigID:        gigID,
		ActorID:      actorID,
		Variant:      p.Offer,
		Message:      in.Message,
		Attachment:   in.Attachment,
		Amount:       in.Amount,
		DeliveryDays: in.DeliveryDays,
		Status:       models.OfferStatusPending,
	}
	if !p.AmountFromOffer {
		offer.Amount = gig.Budget
	}

	if err := s.DB.Create(&offer).Error; err != nil {
		return nil, err
	}

	s.Notifier.Notify(gig.OwnerID, "New offer on your gig", offer.Message, "offer",
		map[string]interface{}{"gig_id": gigID, "offer_id": offer.ID, "amount": offer.Amount})

	return &offer, nil
}

type AcceptTerms struct {
	StartDate time.Time
	DueDate   time.Time
}

// Accept hires the offer. One transaction covers all four steps: the offer
// flips to hired, every other pending offer on the gig is closed, the
// engagement is created, and (order variant) the escrow hold is placed.
// A crash partway leaves the offer pending. Accepting an offer that already
// produced an engagement is a conflict, never a second engagement or hold.
func (s *Service) Accept(ownerID, offerID uuid.UUID, terms AcceptTerms) (*models.Engagement, error) {
	var offer models.Offer
	if err := s.DB.Preload("Gig").First(&offer, "id = ?", offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("offer not found")
		}
		return nil, err
	}
	if offer.Gig == nil {
		return nil, apperr.NotFound("gig not found")
	}
	if offer.Gig.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the gig owner can accept offers")
	}

	p := PolicyFor(offer.Variant)
	var eng models.Engagement

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Offer
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&current, "id = ?", offerID).Error; err != nil {
			return err
		}

		// Re-entry guard: one engagement per offer, ever.
		var engaged int64
		if err := tx.Model(&models.Engagement{}).
			Where("offer_id = ?", offerID).
			Count(&engaged).Error; err != nil {
			return err
		}
		if engaged > 0 {
			return apperr.Conflict("offer already has an engagement")
		}

		if current.Status != models.OfferStatusPending {
			return apperr.InvalidState("only pending offers can be accepted")
		}

		current.Status = models.OfferStatusHired
		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Offer{}).
			Where("gig_id = ? AND id <> ? AND status = ?",
				current.GigID, current.ID, models.OfferStatusPending).
			Update("status", models.OfferStatusClosed).Error; err != nil {
			return err
		}

		amount := current.Amount
		if !p.AmountFromOffer {
			amount = offer.Gig.Budget
		}

		status := models.EngagementStatusActive
		if p.FundOnAccept {
			status = models.EngagementStatusFunded
		}

		startDate := terms.StartDate
		if startDate.IsZero() {
			startDate = time.Now()
		}
		dueDate := terms.DueDate
		if dueDate.IsZero() {
			days := current.DeliveryDays
			if days <= 0 {
				days = 7
			}
			dueDate = startDate.AddDate(0, 0, days)
		}

		eng = models.Engagement{
			ID:        uuid.New(),
			GigID:     current.GigID,
			OfferID:   current.ID,
			PayerID:   ownerID,
			WorkerID:  current.ActorID,
			Variant:   p.Engagement,
			Amount:    amount,
			StartDate: startDate,
			DueDate:   dueDate,
			Status:    status,
		}
		if err := tx.Create(&eng).Error; err != nil {
			return err
		}

		if p.FundOnAccept {
			ref := fmt.Sprintf("ESCROW-%s", eng.ID)
			desc := "Escrow hold for gig " + offer.Gig.Title
			if err := s.Wallet.Hold(tx, eng.WorkerID, eng.ID, amount, ref, desc); err != nil {
				return err
			}
		}

		return tx.Model(&models.Gig{}).
			Where("id = ?", current.GigID).
			Update("status", models.GigStatusInProgress).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(eng.WorkerID, "You were hired", "Your offer was accepted.", "offer",
		map[string]interface{}{"gig_id": eng.GigID, "engagement_id": eng.ID, "amount": eng.Amount})

	return &eng, nil
}

// Reject flips a pending offer to rejected. Gig owner only.
func (s *Service) Reject(ownerID, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.DB.Preload("Gig").First(&offer, "id = ?", offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("offer not found")
		}
		return nil, err
	}
	if offer.Gig == nil || offer.Gig.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the gig owner can reject offers")
	}
	if offer.Status != models.OfferStatusPending {
		return nil, apperr.InvalidState("only pending offers can be rejected")
	}

	offer.Status = models.OfferStatusRejected
	if err := s.DB.Save(&offer).Error; err != nil {
		return nil, err
	}

	s.Notifier.Notify(offer.ActorID, "Offer rejected", "The gig owner declined your offer.", "offer",
		map[string]interface{}{"gig_id": offer.GigID, "offer_id": offer.ID})

	return &offer, nil
}

// Withdraw lets the actor pull their own pending offer back.
func (s *Service) Withdraw(actorID, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.DB.First(&offer, "id = ?", offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("offer not found")
		}
		return nil, err
	}
	if offer.ActorID != actorID {
		return nil, apperr.Forbidden("only the offer's author can withdraw it")
	}
	if offer.Status != models.OfferStatusPending {
		return nil, apperr.InvalidState("only pending offers can be withdrawn")
	}

	offer.Status = models.OfferStatusWithdrawn
	if err := s.DB.Save(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListByGig returns a gig's offers, newest first. Gig owner only.
func (s *Service) ListByGig(ownerID, gigID uuid.UUID) ([]models.Offer, error) {
	var gig models.Gig
	if err := s.DB.First(&gig, "id = ?", gigID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("gig not found")
		}
		return nil, err
	}
	if gig.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the gig owner can list offers")
	}

	var out []models.Offer
	if err := s.DB.Preload("Actor").
		Where("gig_id = ?", gigID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
