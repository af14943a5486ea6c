package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerKind string

const (
	LedgerKindHold    LedgerKind = "hold"
	LedgerKindRelease LedgerKind = "release"
	LedgerKindCredit  LedgerKind = "credit"
	LedgerKindDebit   LedgerKind = "debit"
)

type LedgerStatus string

const (
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusCompleted LedgerStatus = "completed"
	LedgerStatusFailed    LedgerStatus = "failed"
	LedgerStatusCancelled LedgerStatus = "cancelled"
)

// Wallet holds a participant's settled balance. Created lazily on first
// escrow operation, never deleted. Balance only moves through the escrow
// paths in services/wallet.
type Wallet struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"owner_id"`
	Balance int64     `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}

// LedgerTransaction is the append-only money log. The one in-place mutation
// allowed is the escrow flip: a pending hold becomes a completed release (or
// a cancelled hold) — it is not replaced by a new row.
type LedgerTransaction struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WalletID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"wallet_id"`
	EngagementID *uuid.UUID `gorm:"type:uuid;index" json:"engagement_id,omitempty"`

	Amount      int64        `gorm:"not null" json:"amount"`
	Kind        LedgerKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Status      LedgerStatus `gorm:"type:varchar(20);not null" json:"status"`
	Reference   string       `gorm:"type:varchar(60);uniqueIndex" json:"reference"` // e.g. ESCROW-{engagement}
	Description string       `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Wallet *Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (t *LedgerTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
