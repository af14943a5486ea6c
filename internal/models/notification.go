package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is the persisted copy of every notify() call; the same payload
// is published to Redis for live delivery.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Title    string `gorm:"not null" json:"title"`
	Body     string `gorm:"type:text" json:"body"`
	Category string `gorm:"type:varchar(40);index" json:"category"` // offer, engagement, wallet, dispute

	Data datatypes.JSON `json:"data"` // structured payload (ids, amounts)

	IsRead bool `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
