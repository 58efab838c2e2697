package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// Promotion is a reusable discount rule.
type Promotion struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string              `gorm:"column:name;not null"`
	Type           enums.PromotionType `gorm:"column:type;type:promotion_type;not null"`
	Value          decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
	StartsAt       *time.Time          `gorm:"column:starts_at"`
	EndsAt         *time.Time          `gorm:"column:ends_at"`
	MaxRedemptions *int                `gorm:"column:max_redemptions"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// PromoCode is the human-entered string that activates a promotion.
type PromoCode struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string    `gorm:"column:code;not null;unique"`
	PromotionID uuid.UUID `gorm:"column:promotion_id;type:uuid;not null"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Promotion *Promotion `gorm:"foreignKey:PromotionID"`
}

// PromotionRedemption records a single use of a promo code by a user. The
// unique (promo_code_id, user_id) pair enforces single-use under race.
type PromotionRedemption struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PromoCodeID uuid.UUID `gorm:"column:promo_code_id;type:uuid;not null;uniqueIndex:idx_promo_redemption_user"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_promo_redemption_user"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
