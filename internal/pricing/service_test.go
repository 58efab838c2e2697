package pricing

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

type stubRuleRepo struct {
	rule *models.PricingRule
	err  error
}

func (s *stubRuleRepo) FindActiveRule(ctx context.Context, regionID uuid.UUID) (*models.PricingRule, error) {
	return s.rule, s.err
}

func TestHaversineKnownDistances(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
	}{
		{name: "same point", lat1: 40, lon1: -74, lat2: 40, lon2: -74, wantKm: 0},
		{name: "one degree of longitude at the equator", lat1: 0, lon1: 0, lat2: 0, lon2: 1, wantKm: 111.19},
		{name: "new york to los angeles", lat1: 40.7128, lon1: -74.0060, lat2: 34.0522, lon2: -118.2437, wantKm: 3935.75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HaversineKm(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.wantKm) > 0.5 {
				t.Fatalf("expected ~%.2f km, got %.2f", tc.wantKm, got)
			}
		})
	}
}

func TestEstimateAppliesRuleParameters(t *testing.T) {
	regionID := uuid.New()
	repo := &stubRuleRepo{
		rule: &models.PricingRule{
			RegionID:        regionID,
			BaseFee:         decimal.NewFromInt(5),
			DistanceRate:    decimal.NewFromInt(1),
			SurgeMultiplier: decimal.NewFromFloat(1.5),
			TaxRate:         decimal.NewFromInt(10),
			Region:          &models.Region{ID: regionID, Currency: "usd"},
		},
	}
	svc, err := NewService(repo, "usd")
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	// One degree of longitude on the equator is about 111.19 km.
	estimate, err := svc.Estimate(context.Background(), regionID, EstimateInput{
		PickupLatitude: 0, PickupLongitude: 0,
		DropoffLatitude: 0, DropoffLongitude: 1,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}

	assertNear(t, "distance", estimate.DistanceKm, 111.19, 0.05)
	assertNear(t, "delivery fee", estimate.DeliveryFee, 174.29, 0.05)
	assertNear(t, "tax", estimate.Tax, 17.43, 0.05)
	assertNear(t, "total", estimate.Total, 191.72, 0.05)
	if estimate.Currency != "usd" {
		t.Fatalf("expected usd, got %s", estimate.Currency)
	}
}

func TestEstimateZeroDistance(t *testing.T) {
	regionID := uuid.New()
	repo := &stubRuleRepo{
		rule: &models.PricingRule{
			RegionID:        regionID,
			BaseFee:         decimal.NewFromInt(4),
			DistanceRate:    decimal.NewFromInt(2),
			SurgeMultiplier: decimal.NewFromInt(1),
			TaxRate:         decimal.NewFromInt(0),
		},
	}
	svc, _ := NewService(repo, "usd")

	estimate, err := svc.Estimate(context.Background(), regionID, EstimateInput{
		PickupLatitude: 40.7, PickupLongitude: -74.0,
		DropoffLatitude: 40.7, DropoffLongitude: -74.0,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if !estimate.DeliveryFee.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("zero distance should charge the base fee only, got %s", estimate.DeliveryFee)
	}
	if !estimate.Tax.IsZero() {
		t.Fatalf("zero tax rate should produce zero tax, got %s", estimate.Tax)
	}
}

func TestEstimateMissingRuleIsNotFound(t *testing.T) {
	svc, _ := NewService(&stubRuleRepo{}, "usd")

	_, err := svc.Estimate(context.Background(), uuid.New(), EstimateInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestEstimateRejectsBadCoordinates(t *testing.T) {
	svc, _ := NewService(&stubRuleRepo{}, "usd")

	_, err := svc.Estimate(context.Background(), uuid.New(), EstimateInput{
		PickupLatitude: 120,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func assertNear(t *testing.T, field string, got decimal.Decimal, want float64, tolerance float64) {
	t.Helper()
	diff := got.Sub(decimal.NewFromFloat(want)).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(tolerance)) {
		t.Fatalf("%s: expected ~%.2f, got %s", field, want, got)
	}
}
