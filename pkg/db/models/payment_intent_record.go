package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// PaymentIntentRecord mirrors a gateway payment intent. Created when an intent
// is requested; updated only by webhook reconciliation.
type PaymentIntentRecord struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeIntentID string              `gorm:"column:stripe_intent_id;not null;unique"`
	ClientSecret   string              `gorm:"column:client_secret;not null"`
	Status         enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'REQUIRES_ACTION'"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency       string              `gorm:"column:currency;not null"`
	OrderID        *uuid.UUID          `gorm:"column:order_id;type:uuid"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
