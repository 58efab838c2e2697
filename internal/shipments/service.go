package shipments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/internal/pricing"
	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// estimator is the slice of the pricing service shipments need.
type estimator interface {
	Estimate(ctx context.Context, regionID uuid.UUID, input pricing.EstimateInput) (*pricing.Estimate, error)
}

// Service creates and reads Box shipments.
type Service interface {
	CreateShipment(ctx context.Context, userID uuid.UUID, input CreateShipmentInput) (*ShipmentView, error)
	GetShipment(ctx context.Context, userID, orderID uuid.UUID) (*ShipmentView, error)
}

type service struct {
	repo     Repository
	txRunner txRunner
	pricing  estimator
}

// NewService builds the Box shipment service.
func NewService(repo Repository, runner txRunner, estimator estimator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if estimator == nil {
		return nil, fmt.Errorf("pricing estimator required")
	}
	return &service{repo: repo, txRunner: runner, pricing: estimator}, nil
}

// CreateShipment quotes the delivery and opens the order and its task in one
// transaction. The order starts CONFIRMED and the task CREATED.
func (s *service) CreateShipment(ctx context.Context, userID uuid.UUID, input CreateShipmentInput) (*ShipmentView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if input.DropoffAddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dropoff address id is required")
	}
	if strings.TrimSpace(input.PickupAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup address is required")
	}
	if input.PackageSize != nil && !input.PackageSize.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid package size")
	}
	if input.PackageWeight != nil && input.PackageWeight.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package weight must not be negative")
	}

	address, err := s.repo.FindAddress(ctx, input.DropoffAddressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup address")
	}
	// Foreign addresses read the same as missing ones.
	if address == nil || address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if address.Latitude == nil || address.Longitude == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address has no coordinates")
	}

	estimate, err := s.pricing.Estimate(ctx, address.RegionID, pricing.EstimateInput{
		PickupLatitude:   input.PickupLatitude,
		PickupLongitude:  input.PickupLongitude,
		DropoffLatitude:  *address.Latitude,
		DropoffLongitude: *address.Longitude,
	})
	if err != nil {
		return nil, err
	}

	addressID := address.ID
	order := &models.Order{
		UserID:    userID,
		Type:      enums.OrderTypeBox,
		Status:    enums.OrderStatusConfirmed,
		AddressID: &addressID,
	}
	task := &models.DeliveryTask{
		Status:           enums.DeliveryTaskStatusCreated,
		PickupAddress:    strings.TrimSpace(input.PickupAddress),
		PickupLatitude:   input.PickupLatitude,
		PickupLongitude:  input.PickupLongitude,
		DropoffAddress:   address.Line1,
		DropoffLatitude:  *address.Latitude,
		DropoffLongitude: *address.Longitude,
		PackageSize:      input.PackageSize,
		PackageWeight:    input.PackageWeight,
		Instructions:     input.Instructions,
		ScheduledAt:      input.ScheduledAt,
	}
	pricingRow := &models.OrderPricing{
		Subtotal:    decimal.Zero, // box orders carry no goods
		DeliveryFee: estimate.DeliveryFee,
		Tax:         estimate.Tax,
		Total:       estimate.Total,
		Currency:    estimate.Currency,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		pricingRow.OrderID = order.ID
		if err := repo.CreateOrderPricing(ctx, pricingRow); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order pricing")
		}
		note := "Box shipment created"
		if err := repo.CreateOrderEvent(ctx, &models.OrderEvent{
			OrderID: order.ID,
			Status:  order.Status,
			Note:    &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order event")
		}
		task.OrderID = order.ID
		if err := repo.CreateTask(ctx, task); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery task")
		}
		if err := repo.CreateTaskEvent(ctx, &models.TaskEvent{
			TaskID: task.ID,
			Status: task.Status,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create task event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Pricing = pricingRow
	order.Task = task
	return toShipmentView(order), nil
}

func (s *service) GetShipment(ctx context.Context, userID, orderID uuid.UUID) (*ShipmentView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	order, err := s.repo.FindOrderWithDetails(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shipment")
	}
	if order == nil || order.UserID != userID || order.Type != enums.OrderTypeBox {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	return toShipmentView(order), nil
}
