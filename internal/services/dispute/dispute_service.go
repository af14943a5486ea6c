package dispute

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/apperr"
	"github.com/kampusgig/backend/internal/models"
)

// Service records and tracks contested engagements. It opens and lists; it
// never resolves anything on its own — review status writes come from an
// admin through UpdateStatus.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Open creates an open dispute for the engagement. Runs inside the caller's
// transaction so the record commits together with the status flip that
// triggered it.
func (s *Service) Open(tx *gorm.DB, engagementID, raisedByID uuid.UUID, description string) (*models.Dispute, error) {
	d := models.Dispute{
		ID:           uuid.New(),
		EngagementID: engagementID,
		RaisedByID:   raisedByID,
		Description:  description,
		Status:       models.DisputeStatusOpen,
	}
	if err := tx.Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all disputes, most recent first, for administrative review.
func (s *Service) List() ([]models.Dispute, error) {
	var out []models.Dispute
	if err := s.DB.Preload("Engagement").
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var reviewStatuses = map[models.DisputeStatus]bool{
	models.DisputeStatusUnderReview: true,
	models.DisputeStatusResolved:    true,
	models.DisputeStatusEscalated:   true,
}

// UpdateStatus is the reviewer's write path. Resolution text is recorded only
// when the dispute is marked resolved.
func (s *Service) UpdateStatus(disputeID uuid.UUID, status models.DisputeStatus, resolution string) (*models.Dispute, error) {
	if !reviewStatuses[status] {
		return nil, apperr.Validation("invalid dispute status")
	}

	var d models.Dispute
	if err := s.DB.First(&d, "id = ?", disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("dispute not found")
		}
		return nil, err
	}

	d.Status = status
	if status == models.DisputeStatusResolved {
		now := time.Now()
		d.Resolution = resolution
		d.ResolvedAt = &now
	}

	if err := s.DB.Save(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
