package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Region scopes pricing rules and addresses to a service area.
type Region struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Currency  string    `gorm:"column:currency;not null;default:'usd'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PricingRule holds the region-scoped fee parameters for delivery estimates.
type PricingRule struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID        uuid.UUID       `gorm:"column:region_id;type:uuid;not null;index"`
	BaseFee         decimal.Decimal `gorm:"column:base_fee;type:numeric(12,2);not null"`
	DistanceRate    decimal.Decimal `gorm:"column:distance_rate;type:numeric(12,4);not null"`
	SurgeMultiplier decimal.Decimal `gorm:"column:surge_multiplier;type:numeric(6,2);not null;default:1"`
	TaxRate         decimal.Decimal `gorm:"column:tax_rate;type:numeric(6,2);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`

	Region *Region `gorm:"foreignKey:RegionID"`
}
