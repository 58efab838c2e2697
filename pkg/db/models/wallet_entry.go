package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// WalletEntry is an immutable, append-only ledger line. A reversal is a new
// entry with the negated amount, never an edit of the original.
type WalletEntry struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID  uuid.UUID             `gorm:"column:wallet_id;type:uuid;not null;index"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Type      enums.WalletEntryType `gorm:"column:type;type:wallet_entry_type;not null"`
	Reference *string               `gorm:"column:reference"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
