package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// DeliveryTask is one physical pickup/dropoff job tied to exactly one order.
// CourierID stays null until assignment.
type DeliveryTask struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID                `gorm:"column:order_id;type:uuid;not null;unique"`
	Status           enums.DeliveryTaskStatus `gorm:"column:status;type:delivery_task_status;not null;default:'CREATED'"`
	CourierID        *uuid.UUID               `gorm:"column:courier_id;type:uuid;index"`
	PickupAddress    string                   `gorm:"column:pickup_address;not null"`
	PickupLatitude   float64                  `gorm:"column:pickup_latitude;not null"`
	PickupLongitude  float64                  `gorm:"column:pickup_longitude;not null"`
	DropoffAddress   string                   `gorm:"column:dropoff_address;not null"`
	DropoffLatitude  float64                  `gorm:"column:dropoff_latitude;not null"`
	DropoffLongitude float64                  `gorm:"column:dropoff_longitude;not null"`
	PackageSize      *enums.PackageSize       `gorm:"column:package_size;type:package_size"`
	PackageWeight    *decimal.Decimal         `gorm:"column:package_weight;type:numeric(8,2)"`
	Instructions     *string                  `gorm:"column:instructions"`
	ScheduledAt      *time.Time               `gorm:"column:scheduled_at"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Events []TaskEvent `gorm:"foreignKey:TaskID"`
}

// TaskEvent is the append-only audit trail of task status transitions.
type TaskEvent struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TaskID    uuid.UUID                `gorm:"column:task_id;type:uuid;not null;index"`
	Status    enums.DeliveryTaskStatus `gorm:"column:status;type:delivery_task_status;not null"`
	Note      *string                  `gorm:"column:note"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
}
