package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/api/responses"
	"github.com/orbit-delivery/orbit-backend/api/validators"
	"github.com/orbit-delivery/orbit-backend/internal/pricing"
	"github.com/orbit-delivery/orbit-backend/internal/shipments"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
)

type boxEstimateRequest struct {
	RegionID         string   `json:"region_id" validate:"required"`
	PickupLatitude   *float64 `json:"pickup_latitude" validate:"required"`
	PickupLongitude  *float64 `json:"pickup_longitude" validate:"required"`
	DropoffLatitude  *float64 `json:"dropoff_latitude" validate:"required"`
	DropoffLongitude *float64 `json:"dropoff_longitude" validate:"required"`
	// Accepted but not priced yet; quotes are distance-based only.
	PackageSize   *string          `json:"package_size"`
	PackageWeight *decimal.Decimal `json:"package_weight"`
}

// BoxEstimate quotes a delivery without creating anything.
func BoxEstimate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		if _, err := callerID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload boxEstimateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		regionID, err := uuid.Parse(strings.TrimSpace(payload.RegionID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid region_id"))
			return
		}

		estimate, err := svc.Estimate(r.Context(), regionID, pricing.EstimateInput{
			PickupLatitude:   *payload.PickupLatitude,
			PickupLongitude:  *payload.PickupLongitude,
			DropoffLatitude:  *payload.DropoffLatitude,
			DropoffLongitude: *payload.DropoffLongitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, estimate)
	}
}

type boxShipmentRequest struct {
	DropoffAddressID string           `json:"dropoff_address_id" validate:"required"`
	PickupAddress    string           `json:"pickup_address" validate:"required"`
	PickupLatitude   *float64         `json:"pickup_latitude" validate:"required"`
	PickupLongitude  *float64         `json:"pickup_longitude" validate:"required"`
	PackageSize      *string          `json:"package_size"`
	PackageWeight    *decimal.Decimal `json:"package_weight"`
	Instructions     *string          `json:"instructions"`
	ScheduledAt      *time.Time       `json:"scheduled_at"`
}

func (r boxShipmentRequest) toInput() (shipments.CreateShipmentInput, error) {
	addressID, err := uuid.Parse(strings.TrimSpace(r.DropoffAddressID))
	if err != nil {
		return shipments.CreateShipmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dropoff_address_id")
	}

	input := shipments.CreateShipmentInput{
		DropoffAddressID: addressID,
		PickupAddress:    r.PickupAddress,
		PickupLatitude:   *r.PickupLatitude,
		PickupLongitude:  *r.PickupLongitude,
		PackageWeight:    r.PackageWeight,
		Instructions:     r.Instructions,
		ScheduledAt:      r.ScheduledAt,
	}
	if r.PackageSize != nil {
		size, err := enums.ParsePackageSize(strings.TrimSpace(*r.PackageSize))
		if err != nil {
			return shipments.CreateShipmentInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid package size")
		}
		input.PackageSize = &size
	}
	return input, nil
}

// BoxCreateShipment quotes and opens a Box shipment.
func BoxCreateShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload boxShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateShipment(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// BoxGetShipment returns the shipment with its task trail and pricing.
func BoxGetShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment id"))
			return
		}

		view, err := svc.GetShipment(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
