package tasks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// Repository handles delivery task persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTask(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error)
	FindTaskWithEvents(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error)
	ListByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.DeliveryTaskStatus) ([]models.DeliveryTask, error)
	UpdateTask(ctx context.Context, task *models.DeliveryTask) error
	AppendEvent(ctx context.Context, event *models.TaskEvent) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	CreateOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a task repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindTask returns the task, or nil when it does not exist.
func (r *repository) FindTask(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error) {
	var task models.DeliveryTask
	if err := r.db.WithContext(ctx).
		Where("id = ?", taskID).
		First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *repository) FindTaskWithEvents(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error) {
	var task models.DeliveryTask
	if err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", taskID).
		First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *repository) ListByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.DeliveryTaskStatus) ([]models.DeliveryTask, error) {
	query := r.db.WithContext(ctx).
		Where("courier_id = ?", courierID).
		Order("created_at DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var tasks []models.DeliveryTask
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repository) UpdateTask(ctx context.Context, task *models.DeliveryTask) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryTask{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"status":     task.Status,
			"courier_id": task.CourierID,
		}).Error
}

func (r *repository) AppendEvent(ctx context.Context, event *models.TaskEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
