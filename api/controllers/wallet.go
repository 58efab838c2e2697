package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/api/responses"
	"github.com/orbit-delivery/orbit-backend/api/validators"
	"github.com/orbit-delivery/orbit-backend/internal/promotions"
	"github.com/orbit-delivery/orbit-backend/internal/wallet"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
	"github.com/orbit-delivery/orbit-backend/pkg/pagination"
)

type walletTopUpRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Currency string          `json:"currency"`
}

// WalletTopUp opens a gateway payment intent and credits the wallet.
func WalletTopUp(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload walletTopUpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.TopUp(r.Context(), userID, wallet.TopUpInput{
			Amount:   payload.Amount,
			Currency: payload.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// WalletGet returns the balance and the most recent entries.
func WalletGet(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetWallet(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// WalletTransactions returns a cursor page of ledger entries.
func WalletTransactions(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListTransactions(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type promoApplyRequest struct {
	Code        string           `json:"code" validate:"required"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	DeliveryFee *decimal.Decimal `json:"delivery_fee"`
	CartType    *string          `json:"cart_type"`
}

// WalletPromoApply evaluates a promo code and reserves the redemption.
func WalletPromoApply(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotions service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload promoApplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := promotions.ApplyInput{
			Code:        payload.Code,
			Subtotal:    payload.Subtotal,
			DeliveryFee: payload.DeliveryFee,
		}
		if payload.CartType != nil {
			cartType, err := enums.ParseCartType(strings.TrimSpace(*payload.CartType))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart type"))
				return
			}
			input.CartType = &cartType
		}

		result, err := svc.Apply(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
