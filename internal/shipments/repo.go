package shipments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
)

// Repository handles Box shipment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAddress(ctx context.Context, addressID uuid.UUID) (*models.Address, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderPricing(ctx context.Context, pricing *models.OrderPricing) error
	CreateOrderEvent(ctx context.Context, event *models.OrderEvent) error
	CreateTask(ctx context.Context, task *models.DeliveryTask) error
	CreateTaskEvent(ctx context.Context, event *models.TaskEvent) error
	FindOrderWithDetails(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindAddress loads a live address with its region, or nil when it does not
// exist or has been soft-deleted.
func (r *repository) FindAddress(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).
		Preload("Region").
		Where("id = ? AND deleted_at IS NULL", addressID).
		First(&address).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateOrderPricing(ctx context.Context, pricing *models.OrderPricing) error {
	return r.db.WithContext(ctx).Create(pricing).Error
}

func (r *repository) CreateOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) CreateTask(ctx context.Context, task *models.DeliveryTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *repository) CreateTaskEvent(ctx context.Context, event *models.TaskEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindOrderWithDetails loads a shipment order with its pricing, task, and the
// task's ordered event trail.
func (r *repository) FindOrderWithDetails(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Pricing").
		Preload("Task").
		Preload("Task.Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}
