package couriers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
)

// Repository handles courier profile persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureCourier(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	FindByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error)
	SetOnline(ctx context.Context, courierID uuid.UUID, online bool) error
	OpenShift(ctx context.Context, shift *models.CourierShift) error
	CloseOpenShifts(ctx context.Context, courierID uuid.UUID, endedAt time.Time) error
	CreateLocation(ctx context.Context, location *models.CourierLocation) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a courier repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureCourier auto-provisions an offline profile on first courier-facing
// call. The upsert keyed on user_id keeps concurrent calls from racing.
func (r *repository) EnsureCourier(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	courier := &models.Courier{
		UserID: userID,
		Online: false,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(courier).Error; err != nil {
		return nil, err
	}

	var stored models.Courier
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindByUser returns the courier profile for a user, or nil when none exists.
func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&courier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &courier, nil
}

func (r *repository) FindByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	if err := r.db.WithContext(ctx).
		Where("id = ?", courierID).
		First(&courier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &courier, nil
}

func (r *repository) SetOnline(ctx context.Context, courierID uuid.UUID, online bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", courierID).
		Update("online", online).Error
}

func (r *repository) OpenShift(ctx context.Context, shift *models.CourierShift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *repository) CloseOpenShifts(ctx context.Context, courierID uuid.UUID, endedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CourierShift{}).
		Where("courier_id = ? AND ended_at IS NULL", courierID).
		Update("ended_at", endedAt).Error
}

func (r *repository) CreateLocation(ctx context.Context, location *models.CourierLocation) error {
	return r.db.WithContext(ctx).Create(location).Error
}
