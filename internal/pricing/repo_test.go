package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	regions := `
CREATE TABLE IF NOT EXISTS regions (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  created_at DATETIME
);`
	rules := `
CREATE TABLE IF NOT EXISTS pricing_rules (
  id TEXT PRIMARY KEY,
  region_id TEXT NOT NULL,
  base_fee NUMERIC NOT NULL,
  distance_rate NUMERIC NOT NULL,
  surge_multiplier NUMERIC NOT NULL DEFAULT 1,
  tax_rate NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(regions).Error)
	require.NoError(t, db.Exec(rules).Error)

	return db
}

func TestFindActiveRulePicksNewestAndPreloadsRegion(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	region := &models.Region{ID: uuid.New(), Name: "Metro North", Currency: "eur", CreatedAt: now}
	require.NoError(t, db.Create(region).Error)

	stale := &models.PricingRule{
		ID:           uuid.New(),
		RegionID:     region.ID,
		BaseFee:      decimal.NewFromInt(3),
		DistanceRate: decimal.NewFromFloat(0.5),
		CreatedAt:    now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(stale).Error)
	current := &models.PricingRule{
		ID:           uuid.New(),
		RegionID:     region.ID,
		BaseFee:      decimal.NewFromInt(5),
		DistanceRate: decimal.NewFromInt(1),
		CreatedAt:    now,
	}
	require.NoError(t, db.Create(current).Error)

	rule, err := repo.FindActiveRule(context.Background(), region.ID)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, current.ID, rule.ID)
	assert.True(t, rule.BaseFee.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, rule.Region)
	assert.Equal(t, "eur", rule.Region.Currency)
}

func TestFindActiveRuleMissingRegionReturnsNil(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)

	rule, err := repo.FindActiveRule(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, rule)
}
