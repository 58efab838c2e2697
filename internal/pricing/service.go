package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

var percentDivisor = decimal.NewFromInt(100)

// EstimateInput carries the pickup and dropoff coordinates for a quote.
type EstimateInput struct {
	PickupLatitude   float64
	PickupLongitude  float64
	DropoffLatitude  float64
	DropoffLongitude float64
}

// Estimate is a priced delivery quote. All monetary fields are rounded to
// two decimal places.
type Estimate struct {
	RegionID    uuid.UUID       `json:"region_id"`
	Currency    string          `json:"currency"`
	DistanceKm  decimal.Decimal `json:"distance_km"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Service computes delivery quotes from region pricing rules.
type Service interface {
	Estimate(ctx context.Context, regionID uuid.UUID, input EstimateInput) (*Estimate, error)
}

type service struct {
	repo            Repository
	defaultCurrency string
}

// NewService builds the pricing estimator.
func NewService(repo Repository, defaultCurrency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &service{repo: repo, defaultCurrency: defaultCurrency}, nil
}

func (s *service) Estimate(ctx context.Context, regionID uuid.UUID, input EstimateInput) (*Estimate, error) {
	if regionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region id is required")
	}
	if err := validateCoordinates(input); err != nil {
		return nil, err
	}

	rule, err := s.repo.FindActiveRule(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pricing rule")
	}
	if rule == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pricing configured for region")
	}

	distance := decimal.NewFromFloat(HaversineKm(
		input.PickupLatitude, input.PickupLongitude,
		input.DropoffLatitude, input.DropoffLongitude,
	))

	fee := rule.BaseFee.
		Add(rule.DistanceRate.Mul(distance)).
		Mul(rule.SurgeMultiplier).
		Round(2)
	tax := fee.Mul(rule.TaxRate).Div(percentDivisor).Round(2)

	currency := s.defaultCurrency
	if rule.Region != nil && rule.Region.Currency != "" {
		currency = rule.Region.Currency
	}

	return &Estimate{
		RegionID:    regionID,
		Currency:    currency,
		DistanceKm:  distance.Round(2),
		DeliveryFee: fee,
		Tax:         tax,
		Total:       fee.Add(tax).Round(2),
	}, nil
}

func validateCoordinates(input EstimateInput) error {
	points := []struct {
		name     string
		lat, lon float64
	}{
		{name: "pickup", lat: input.PickupLatitude, lon: input.PickupLongitude},
		{name: "dropoff", lat: input.DropoffLatitude, lon: input.DropoffLongitude},
	}
	for _, p := range points {
		if p.lat < -90 || p.lat > 90 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s latitude out of range", p.name))
		}
		if p.lon < -180 || p.lon > 180 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s longitude out of range", p.name))
		}
	}
	return nil
}
