package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under_review"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusEscalated   DisputeStatus = "escalated"
)

// Dispute tracks a contested engagement for administrative review. The core
// only opens and lists; review status writes come from an admin.
type Dispute struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EngagementID uuid.UUID `gorm:"type:uuid;index;not null" json:"engagement_id"`
	RaisedByID   uuid.UUID `gorm:"type:uuid;index;not null" json:"raised_by_id"`

	Description string        `gorm:"type:text" json:"description"`
	Status      DisputeStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`

	Resolution string     `gorm:"type:text" json:"resolution,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Engagement *Engagement `gorm:"foreignKey:EngagementID" json:"engagement,omitempty"`
	RaisedBy   *User       `gorm:"foreignKey:RaisedByID" json:"raised_by,omitempty"`
}

func (d *Dispute) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
