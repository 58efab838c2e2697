package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
)

// Repository loads region-scoped pricing configuration.
type Repository interface {
	FindActiveRule(ctx context.Context, regionID uuid.UUID) (*models.PricingRule, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindActiveRule returns the newest rule for the region with its region
// preloaded, or nil when the region has no pricing configured.
func (r *repository) FindActiveRule(ctx context.Context, regionID uuid.UUID) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.WithContext(ctx).
		Preload("Region").
		Where("region_id = ?", regionID).
		Order("created_at DESC").
		First(&rule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}
