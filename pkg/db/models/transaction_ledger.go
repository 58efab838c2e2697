package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// TransactionLedger joins a wallet entry to the payment intent that produced
// it, carrying a mirrored amount/status so the audit row stands on its own.
// Exactly one ledger row exists per intent-driven wallet entry.
type TransactionLedger struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletEntryID   uuid.UUID           `gorm:"column:wallet_entry_id;type:uuid;not null;unique"`
	PaymentIntentID uuid.UUID           `gorm:"column:payment_intent_id;type:uuid;not null;index"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status          enums.PaymentStatus `gorm:"column:status;type:payment_status;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
