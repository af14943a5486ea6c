package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferVariant distinguishes the two ways work gets offered on the platform:
// an application against a fixed-budget gig, or a proposal where the student
// names their own price and delivery time.
type OfferVariant string

const (
	OfferVariantApplication OfferVariant = "application"
	OfferVariantProposal    OfferVariant = "proposal"
)

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusHired     OfferStatus = "hired" // terminal; "accepted" for proposals
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusClosed    OfferStatus = "closed" // competing offer was hired instead
	OfferStatusWithdrawn OfferStatus = "withdrawn"
)

// Offer is a student's bid on a gig. One row per (gig, actor) pair, enforced
// by the composite unique index and re-checked in the service.
type Offer struct {
	ID      uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	GigID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_offers_gig_actor" json:"gig_id"`
	ActorID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_offers_gig_actor" json:"actor_id"`
	Variant OfferVariant `gorm:"type:varchar(20);not null" json:"variant"`

	Message    string `gorm:"type:text" json:"message"`
	Attachment string `gorm:"type:text" json:"attachment"`

	// Proposal-only terms; applications inherit the gig budget.
	Amount       int64 `json:"amount"`
	DeliveryDays int   `json:"delivery_days"`

	Status OfferStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Gig   *Gig  `gorm:"foreignKey:GigID" json:"gig,omitempty"`
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}
