package couriers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages courier profiles, availability, and location pings.
type Service interface {
	EnsureCourier(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	FindCourierByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	FindCourierByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error)
	ToggleOnline(ctx context.Context, userID uuid.UUID, online bool) (*models.Courier, error)
	RecordLocation(ctx context.Context, userID uuid.UUID, latitude, longitude float64) (*models.Courier, error)
}

type service struct {
	repo     Repository
	txRunner txRunner
	now      func() time.Time
}

// NewService builds a courier service backed by the profile store.
func NewService(repo Repository, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("courier repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		txRunner: runner,
		now:      time.Now,
	}, nil
}

// EnsureCourier provisions an offline profile the first time a user hits a
// courier-facing endpoint.
func (s *service) EnsureCourier(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	courier, err := s.repo.EnsureCourier(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure courier profile")
	}
	return courier, nil
}

// FindCourierByUser returns the courier profile without auto-provisioning.
// Missing profiles return nil.
func (s *service) FindCourierByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	courier, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup courier profile")
	}
	return courier, nil
}

func (s *service) FindCourierByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	if courierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id missing")
	}
	courier, err := s.repo.FindByID(ctx, courierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup courier profile")
	}
	return courier, nil
}

// ToggleOnline flips availability and brackets the time online with shift rows.
// Setting the current state again is a no-op.
func (s *service) ToggleOnline(ctx context.Context, userID uuid.UUID, online bool) (*models.Courier, error) {
	courier, err := s.EnsureCourier(ctx, userID)
	if err != nil {
		return nil, err
	}
	if courier.Online == online {
		return courier, nil
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SetOnline(ctx, courier.ID, online); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update availability")
		}
		if online {
			shift := &models.CourierShift{CourierID: courier.ID}
			if err := repo.OpenShift(ctx, shift); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open shift")
			}
			return nil
		}
		if err := repo.CloseOpenShifts(ctx, courier.ID, s.now()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close shift")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	courier.Online = online
	return courier, nil
}

// RecordLocation appends a GPS breadcrumb for the acting courier.
func (s *service) RecordLocation(ctx context.Context, userID uuid.UUID, latitude, longitude float64) (*models.Courier, error) {
	if latitude < -90 || latitude > 90 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude out of range")
	}
	if longitude < -180 || longitude > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "longitude out of range")
	}

	courier, err := s.EnsureCourier(ctx, userID)
	if err != nil {
		return nil, err
	}

	location := &models.CourierLocation{
		CourierID: courier.ID,
		Latitude:  latitude,
		Longitude: longitude,
	}
	if err := s.repo.CreateLocation(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record location")
	}
	return courier, nil
}
