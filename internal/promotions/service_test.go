package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

type stubPromoRepo struct {
	findActiveCode   func(ctx context.Context, code string) (*models.PromoCode, error)
	countRedemptions func(ctx context.Context, promoCodeID uuid.UUID) (int64, error)
	redemptionExists func(ctx context.Context, promoCodeID, userID uuid.UUID) (bool, error)
	createRedemption func(ctx context.Context, redemption *models.PromotionRedemption) error
	countOrders      func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *stubPromoRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPromoRepo) FindActiveCode(ctx context.Context, code string) (*models.PromoCode, error) {
	if s.findActiveCode != nil {
		return s.findActiveCode(ctx, code)
	}
	return nil, nil
}

func (s *stubPromoRepo) CountRedemptions(ctx context.Context, promoCodeID uuid.UUID) (int64, error) {
	if s.countRedemptions != nil {
		return s.countRedemptions(ctx, promoCodeID)
	}
	return 0, nil
}

func (s *stubPromoRepo) RedemptionExists(ctx context.Context, promoCodeID, userID uuid.UUID) (bool, error) {
	if s.redemptionExists != nil {
		return s.redemptionExists(ctx, promoCodeID, userID)
	}
	return false, nil
}

func (s *stubPromoRepo) CreateRedemption(ctx context.Context, redemption *models.PromotionRedemption) error {
	if s.createRedemption != nil {
		return s.createRedemption(ctx, redemption)
	}
	redemption.ID = uuid.New()
	return nil
}

func (s *stubPromoRepo) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.countOrders != nil {
		return s.countOrders(ctx, userID)
	}
	return 0, nil
}

func activeCode(code string, promoType enums.PromotionType, value decimal.Decimal) *models.PromoCode {
	promoID := uuid.New()
	return &models.PromoCode{
		ID:          uuid.New(),
		Code:        code,
		PromotionID: promoID,
		IsActive:    true,
		Promotion: &models.Promotion{
			ID:    promoID,
			Name:  code,
			Type:  promoType,
			Value: value,
		},
	}
}

func newPromoService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, "usd")
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestApplyPercentPromo(t *testing.T) {
	var lookedUp string
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			lookedUp = code
			return activeCode("WELCOME10", enums.PromotionTypePercent, decimal.NewFromInt(10)), nil
		},
	}
	svc := newPromoService(t, repo)

	result, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "  welcome10 ",
		Subtotal: decimal.NewFromFloat(50.00),
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if lookedUp != "WELCOME10" {
		t.Fatalf("code should be trimmed and uppercased before lookup, got %q", lookedUp)
	}
	if !result.Discount.Amount.Equal(decimal.NewFromFloat(5.00)) {
		t.Fatalf("expected 5.00 discount, got %s", result.Discount.Amount)
	}
	if result.Discount.FreeDelivery {
		t.Fatal("percent promos must not flag free delivery")
	}
	if result.Promo.Code != "WELCOME10" || result.Promo.Type != enums.PromotionTypePercent {
		t.Fatalf("unexpected promo view %+v", result.Promo)
	}
	if result.RedemptionID == uuid.Nil {
		t.Fatal("expected a recorded redemption id")
	}
}

func TestApplyFixedPromoCapsAtSubtotal(t *testing.T) {
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			return activeCode("FLAT20", enums.PromotionTypeFixed, decimal.NewFromInt(20)), nil
		},
	}
	svc := newPromoService(t, repo)

	result, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "FLAT20",
		Subtotal: decimal.NewFromFloat(12.50),
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !result.Discount.Amount.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("fixed discount must cap at the subtotal, got %s", result.Discount.Amount)
	}
}

func TestApplyFreeDeliveryPromo(t *testing.T) {
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			return activeCode("SHIPFREE", enums.PromotionTypeFreeDelivery, decimal.NewFromInt(10)), nil
		},
	}
	svc := newPromoService(t, repo)

	fee := decimal.NewFromFloat(6.00)
	result, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:        "SHIPFREE",
		Subtotal:    decimal.NewFromInt(30),
		DeliveryFee: &fee,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !result.Discount.Amount.Equal(fee) {
		t.Fatalf("expected min(fee, value) = 6.00, got %s", result.Discount.Amount)
	}
	if !result.Discount.FreeDelivery {
		t.Fatal("free-delivery promos must flag free delivery")
	}

	// Without a fee the discount is zero but the flag still applies.
	result, err = svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "SHIPFREE",
		Subtotal: decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !result.Discount.Amount.IsZero() || !result.Discount.FreeDelivery {
		t.Fatalf("expected zero discount with free delivery flagged, got %+v", result.Discount)
	}
}

func TestApplyUnknownOrInactiveCode(t *testing.T) {
	svc := newPromoService(t, &stubPromoRepo{})

	_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "NOPE",
		Subtotal: decimal.NewFromInt(10),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown code, got %v", err)
	}
}

func TestApplyWindowEnforcement(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	cases := []struct {
		name     string
		startsAt *time.Time
		endsAt   *time.Time
	}{
		{name: "not started", startsAt: &future},
		{name: "expired", endsAt: &past},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubPromoRepo{
				findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
					pc := activeCode("WINDOW", enums.PromotionTypePercent, decimal.NewFromInt(5))
					pc.Promotion.StartsAt = tc.startsAt
					pc.Promotion.EndsAt = tc.endsAt
					return pc, nil
				},
			}
			svc := newPromoService(t, repo)

			_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
				Code:     "WINDOW",
				Subtotal: decimal.NewFromInt(10),
			})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyRedemptionCap(t *testing.T) {
	maxUses := 100
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			pc := activeCode("CAPPED", enums.PromotionTypePercent, decimal.NewFromInt(5))
			pc.Promotion.MaxRedemptions = &maxUses
			return pc, nil
		},
		countRedemptions: func(ctx context.Context, promoCodeID uuid.UUID) (int64, error) {
			return 100, nil
		},
	}
	svc := newPromoService(t, repo)

	_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "CAPPED",
		Subtotal: decimal.NewFromInt(10),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict at the redemption cap, got %v", err)
	}
}

func TestApplySingleUsePerUser(t *testing.T) {
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			return activeCode("ONCE", enums.PromotionTypePercent, decimal.NewFromInt(5)), nil
		},
		redemptionExists: func(ctx context.Context, promoCodeID, userID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	svc := newPromoService(t, repo)

	_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "ONCE",
		Subtotal: decimal.NewFromInt(10),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for double redemption, got %v", err)
	}
}

func TestApplyFirstOrderPromoRejectsReturningUsers(t *testing.T) {
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			return activeCode("FIRSTRIDE", enums.PromotionTypeFirstOrder, decimal.NewFromInt(15)), nil
		},
		countOrders: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	svc := newPromoService(t, repo)

	_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "FIRSTRIDE",
		Subtotal: decimal.NewFromInt(40),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for returning user, got %v", err)
	}
}

func TestApplyRaceLosesToUniqueIndex(t *testing.T) {
	repo := &stubPromoRepo{
		findActiveCode: func(ctx context.Context, code string) (*models.PromoCode, error) {
			return activeCode("RACE", enums.PromotionTypePercent, decimal.NewFromInt(5)), nil
		},
		createRedemption: func(ctx context.Context, redemption *models.PromotionRedemption) error {
			return &fakePGError{msg: `duplicate key value violates unique constraint "idx_promo_redemption_user"`}
		},
	}
	svc := newPromoService(t, repo)

	_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{
		Code:     "RACE",
		Subtotal: decimal.NewFromInt(10),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict when the unique index fires, got %v", err)
	}
}

type fakePGError struct{ msg string }

func (e *fakePGError) Error() string { return e.msg }
