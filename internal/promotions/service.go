package promotions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/db"
	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

var percentDivisor = decimal.NewFromInt(100)

// ApplyInput carries a promo evaluation request.
type ApplyInput struct {
	Code        string
	Subtotal    decimal.Decimal
	DeliveryFee *decimal.Decimal
	CartType    *enums.CartType
}

// PromoView identifies the matched promotion.
type PromoView struct {
	Code        string              `json:"code"`
	PromotionID uuid.UUID           `json:"promotion_id"`
	Type        enums.PromotionType `json:"type"`
}

// DiscountView is the computed discount.
type DiscountView struct {
	Amount       decimal.Decimal `json:"amount"`
	FreeDelivery bool            `json:"free_delivery"`
	Currency     string          `json:"currency"`
}

// ApplyResult is returned to checkout flows.
type ApplyResult struct {
	Promo        PromoView       `json:"promo"`
	Discount     DiscountView    `json:"discount"`
	CartType     *enums.CartType `json:"cart_type,omitempty"`
	RedemptionID uuid.UUID       `json:"redemption_id"`
}

// Service evaluates promo codes and reserves redemptions.
type Service interface {
	Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*ApplyResult, error)
}

type service struct {
	repo     Repository
	currency string
	now      func() time.Time
}

// NewService builds a promotion evaluator.
func NewService(repo Repository, currency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}
	return &service{
		repo:     repo,
		currency: currency,
		now:      time.Now,
	}, nil
}

func (s *service) Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*ApplyResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if input.Subtotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative")
	}
	if input.CartType != nil && !input.CartType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart type")
	}

	promoCode, err := s.repo.FindActiveCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup promo code")
	}
	if promoCode == nil || promoCode.Promotion == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code invalid or inactive")
	}
	promo := promoCode.Promotion

	now := s.now()
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo is not active yet")
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo has expired")
	}

	if promo.MaxRedemptions != nil {
		count, err := s.repo.CountRedemptions(ctx, promoCode.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count redemptions")
		}
		if count >= int64(*promo.MaxRedemptions) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo redemption limit reached")
		}
	}

	redeemed, err := s.repo.RedemptionExists(ctx, promoCode.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior redemption")
	}
	if redeemed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo already redeemed")
	}

	if promo.Type == enums.PromotionTypeFirstOrder {
		orders, err := s.repo.CountOrdersByUser(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count user orders")
		}
		if orders > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo is limited to first orders")
		}
	}

	discount := computeDiscount(promo, input, s.currency)

	// Redemption is reserved at evaluation time; the unique
	// (promo_code_id, user_id) index settles concurrent applies.
	redemption := &models.PromotionRedemption{
		PromoCodeID: promoCode.ID,
		UserID:      userID,
	}
	if err := s.repo.CreateRedemption(ctx, redemption); err != nil {
		if db.IsUniqueViolation(err, "idx_promo_redemption_user") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo already redeemed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create redemption")
	}

	return &ApplyResult{
		Promo: PromoView{
			Code:        promoCode.Code,
			PromotionID: promo.ID,
			Type:        promo.Type,
		},
		Discount:     discount,
		CartType:     input.CartType,
		RedemptionID: redemption.ID,
	}, nil
}

func computeDiscount(promo *models.Promotion, input ApplyInput, currency string) DiscountView {
	view := DiscountView{Amount: decimal.Zero, Currency: currency}

	switch promo.Type {
	case enums.PromotionTypePercent:
		view.Amount = input.Subtotal.Mul(promo.Value).Div(percentDivisor).Round(2)
	case enums.PromotionTypeFixed, enums.PromotionTypeFirstOrder:
		view.Amount = decimal.Min(input.Subtotal, promo.Value)
	case enums.PromotionTypeFreeDelivery:
		view.FreeDelivery = true
		if input.DeliveryFee != nil {
			view.Amount = decimal.Min(*input.DeliveryFee, promo.Value)
		}
	}
	return view
}
