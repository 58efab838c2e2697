package shipments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// CreateShipmentInput describes a new Box shipment request.
type CreateShipmentInput struct {
	DropoffAddressID uuid.UUID
	PickupAddress    string
	PickupLatitude   float64
	PickupLongitude  float64
	PackageSize      *enums.PackageSize
	PackageWeight    *decimal.Decimal
	Instructions     *string
	ScheduledAt      *time.Time
}

// PricingView is the monetary breakdown of a shipment.
type PricingView struct {
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

// TaskEventView is one entry of the task audit trail.
type TaskEventView struct {
	Status    enums.DeliveryTaskStatus `json:"status"`
	Note      *string                  `json:"note,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// TaskView summarizes the delivery task attached to a shipment.
type TaskView struct {
	ID     uuid.UUID                `json:"id"`
	Status enums.DeliveryTaskStatus `json:"status"`
	Events []TaskEventView          `json:"events,omitempty"`
}

// ShipmentView is the materialized read of a Box shipment.
type ShipmentView struct {
	OrderID   uuid.UUID         `json:"order_id"`
	Status    enums.OrderStatus `json:"status"`
	Pricing   *PricingView      `json:"pricing,omitempty"`
	Task      *TaskView         `json:"task,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toShipmentView(order *models.Order) *ShipmentView {
	view := &ShipmentView{
		OrderID:   order.ID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}
	if order.Pricing != nil {
		view.Pricing = &PricingView{
			DeliveryFee: order.Pricing.DeliveryFee,
			Tax:         order.Pricing.Tax,
			Total:       order.Pricing.Total,
			Currency:    order.Pricing.Currency,
		}
	}
	if order.Task != nil {
		task := &TaskView{
			ID:     order.Task.ID,
			Status: order.Task.Status,
		}
		for _, event := range order.Task.Events {
			task.Events = append(task.Events, TaskEventView{
				Status:    event.Status,
				Note:      event.Note,
				CreatedAt: event.CreatedAt,
			})
		}
		view.Task = task
	}
	return view
}
