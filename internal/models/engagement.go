package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EngagementVariant mirrors OfferVariant on the funded side. A contract is
// funded by a separate deposit after acceptance; an order is funded inside
// the acceptance itself.
type EngagementVariant string

const (
	EngagementVariantContract EngagementVariant = "contract"
	EngagementVariantOrder    EngagementVariant = "order"
)

type EngagementStatus string

const (
	EngagementStatusActive    EngagementStatus = "active" // accepted, waiting for deposit
	EngagementStatusFunded    EngagementStatus = "funded"
	EngagementStatusSubmitted EngagementStatus = "submitted"
	EngagementStatusCompleted EngagementStatus = "completed"
	EngagementStatusCancelled EngagementStatus = "cancelled"
	EngagementStatusDisputed  EngagementStatus = "disputed"
)

// Engagement is a funded bilateral work agreement derived from a hired offer.
// Exactly one per offer (unique index on OfferID). Rows are never deleted,
// only moved to a terminal status.
type Engagement struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GigID   uuid.UUID `gorm:"type:uuid;index;not null" json:"gig_id"`
	OfferID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"offer_id"`

	PayerID  uuid.UUID `gorm:"type:uuid;index;not null" json:"payer_id"`  // gig owner
	WorkerID uuid.UUID `gorm:"type:uuid;index;not null" json:"worker_id"` // hired student

	Variant EngagementVariant `gorm:"type:varchar(20);not null" json:"variant"`

	// Agreed price, frozen at acceptance. The escrow hold equals this amount.
	Amount int64 `gorm:"not null" json:"amount"`

	StartDate time.Time        `json:"start_date"`
	DueDate   time.Time        `json:"due_date"`
	Status    EngagementStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	SubmissionURL   string     `gorm:"type:text" json:"submission_url"`
	SubmissionNotes string     `gorm:"type:text" json:"submission_notes"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Gig    *Gig   `gorm:"foreignKey:GigID" json:"gig,omitempty"`
	Offer  *Offer `gorm:"foreignKey:OfferID" json:"offer,omitempty"`
	Payer  *User  `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	Worker *User  `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}

func (e *Engagement) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
