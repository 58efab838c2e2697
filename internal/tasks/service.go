package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/internal/notify"
	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// courierDirectory is the slice of the courier service the task state
// machine needs.
type courierDirectory interface {
	EnsureCourier(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	FindCourierByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	FindCourierByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error)
}

// AssignInput targets a courier either directly or through the user account.
type AssignInput struct {
	CourierID *uuid.UUID
	UserID    *uuid.UUID
}

// StatusInput carries a requested status transition.
type StatusInput struct {
	Status enums.DeliveryTaskStatus
	Note   *string
}

// Service drives the delivery task state machine.
type Service interface {
	GetTask(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error)
	ListCourierTasks(ctx context.Context, userID uuid.UUID, statuses []enums.DeliveryTaskStatus) ([]models.DeliveryTask, error)
	Assign(ctx context.Context, taskID uuid.UUID, input AssignInput) (*models.DeliveryTask, error)
	AcceptTask(ctx context.Context, userID, taskID uuid.UUID) (*models.DeliveryTask, error)
	UpdateTaskStatus(ctx context.Context, userID, taskID uuid.UUID, input StatusInput) (*models.DeliveryTask, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, input StatusInput) (*models.DeliveryTask, error)
}

type service struct {
	repo     Repository
	txRunner txRunner
	couriers courierDirectory
	sink     notify.Sink
	logg     *logger.Logger
}

// ServiceParams wires the task service dependencies.
type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	Couriers          courierDirectory
	Sink              notify.Sink
	Logger            *logger.Logger
}

// NewService builds the delivery task service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("task repository required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Couriers == nil {
		return nil, fmt.Errorf("courier directory required")
	}
	sink := params.Sink
	if sink == nil {
		sink = notify.NoopSink{}
	}
	return &service{
		repo:     params.Repo,
		txRunner: params.TransactionRunner,
		couriers: params.Couriers,
		sink:     sink,
		logg:     params.Logger,
	}, nil
}

func (s *service) GetTask(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error) {
	task, err := s.repo.FindTaskWithEvents(ctx, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup task")
	}
	if task == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
	}
	return task, nil
}

func (s *service) ListCourierTasks(ctx context.Context, userID uuid.UUID, statuses []enums.DeliveryTaskStatus) ([]models.DeliveryTask, error) {
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter %q", status))
		}
	}
	courier, err := s.couriers.EnsureCourier(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByCourier(ctx, courier.ID, statuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courier tasks")
	}
	return tasks, nil
}

// Assign forces a courier onto a task from the dispatch console. The courier
// is resolved from an explicit courier id or from the user account.
func (s *service) Assign(ctx context.Context, taskID uuid.UUID, input AssignInput) (*models.DeliveryTask, error) {
	courier, err := s.resolveCourier(ctx, input)
	if err != nil {
		return nil, err
	}

	task, err := s.loadOpenTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = enums.DeliveryTaskStatusAssigned
	task.CourierID = &courier.ID
	note := fmt.Sprintf("Assigned to courier %s", courier.ID)
	if _, err := s.applyTransition(ctx, task, &note); err != nil {
		return nil, err
	}

	s.sink.TaskUpdated(ctx, task.ID, task.Status)
	return task, nil
}

// AcceptTask lets a courier claim an unassigned task. Accepting a task that
// is already theirs is a no-op re-accept.
func (s *service) AcceptTask(ctx context.Context, userID, taskID uuid.UUID) (*models.DeliveryTask, error) {
	courier, err := s.couriers.EnsureCourier(ctx, userID)
	if err != nil {
		return nil, err
	}

	task, err := s.loadOpenTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.CourierID != nil && *task.CourierID != courier.ID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task is already assigned to another courier")
	}

	task.Status = enums.DeliveryTaskStatusAssigned
	task.CourierID = &courier.ID
	note := "Courier accepted task"
	if _, err := s.applyTransition(ctx, task, &note); err != nil {
		return nil, err
	}

	s.sink.TaskUpdated(ctx, task.ID, task.Status)
	return task, nil
}

// UpdateTaskStatus is the courier-facing transition. Couriers may only touch
// their own task and may only use the courier-settable statuses.
func (s *service) UpdateTaskStatus(ctx context.Context, userID, taskID uuid.UUID, input StatusInput) (*models.DeliveryTask, error) {
	if err := validateTransitionTarget(input.Status); err != nil {
		return nil, err
	}
	if !input.Status.CourierSettable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("couriers cannot set status %q", input.Status))
	}

	courier, err := s.couriers.EnsureCourier(ctx, userID)
	if err != nil {
		return nil, err
	}

	task, err := s.loadOpenTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.CourierID != nil && *task.CourierID != courier.ID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task belongs to another courier")
	}

	task.Status = input.Status
	if task.CourierID == nil {
		task.CourierID = &courier.ID
	}
	orderStatus, err := s.applyTransition(ctx, task, input.Note)
	if err != nil {
		return nil, err
	}

	s.notifyAfterCommit(ctx, task, orderStatus)
	return task, nil
}

// UpdateStatus is the dispatch-console transition with no ownership check.
func (s *service) UpdateStatus(ctx context.Context, taskID uuid.UUID, input StatusInput) (*models.DeliveryTask, error) {
	if err := validateTransitionTarget(input.Status); err != nil {
		return nil, err
	}

	task, err := s.loadOpenTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = input.Status
	orderStatus, err := s.applyTransition(ctx, task, input.Note)
	if err != nil {
		return nil, err
	}

	s.notifyAfterCommit(ctx, task, orderStatus)
	return task, nil
}

func (s *service) resolveCourier(ctx context.Context, input AssignInput) (*models.Courier, error) {
	switch {
	case input.CourierID != nil:
		courier, err := s.couriers.FindCourierByID(ctx, *input.CourierID)
		if err != nil {
			return nil, err
		}
		if courier == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier not found")
		}
		return courier, nil
	case input.UserID != nil:
		courier, err := s.couriers.FindCourierByUser(ctx, *input.UserID)
		if err != nil {
			return nil, err
		}
		if courier == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "user has no courier profile")
		}
		return courier, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courierId or userId is required")
	}
}

// loadOpenTask fetches the task and rejects transitions on settled tasks.
func (s *service) loadOpenTask(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error) {
	task, err := s.repo.FindTask(ctx, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup task")
	}
	if task == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
	}
	if task.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("task is already %s", task.Status))
	}
	return task, nil
}

// applyTransition persists the task update, its audit event, and the order
// propagation in one transaction. It returns the new order status when the
// order changed.
func (s *service) applyTransition(ctx context.Context, task *models.DeliveryTask, note *string) (*enums.OrderStatus, error) {
	orderStatus := propagatedOrderStatus(task.Status)

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateTask(ctx, task); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task")
		}
		if err := repo.AppendEvent(ctx, &models.TaskEvent{
			TaskID: task.ID,
			Status: task.Status,
			Note:   note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append task event")
		}
		if orderStatus == nil {
			return nil
		}
		if err := repo.UpdateOrderStatus(ctx, task.OrderID, *orderStatus); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "propagate order status")
		}
		orderNote := fmt.Sprintf("Delivery task %s", task.Status)
		if err := repo.CreateOrderEvent(ctx, &models.OrderEvent{
			OrderID: task.OrderID,
			Status:  *orderStatus,
			Note:    &orderNote,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orderStatus, nil
}

func (s *service) notifyAfterCommit(ctx context.Context, task *models.DeliveryTask, orderStatus *enums.OrderStatus) {
	s.sink.TaskUpdated(ctx, task.ID, task.Status)
	if orderStatus != nil {
		s.sink.OrderUpdated(ctx, task.OrderID, *orderStatus)
	}
}

// validateTransitionTarget rejects unknown statuses and re-entry into CREATED.
// CREATED is the birth state; nothing transitions back into it.
func validateTransitionTarget(status enums.DeliveryTaskStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	if status == enums.DeliveryTaskStatusCreated {
		return pkgerrors.New(pkgerrors.CodeValidation, "tasks cannot transition back to CREATED")
	}
	return nil
}

// propagatedOrderStatus maps terminal task outcomes onto the parent order.
func propagatedOrderStatus(status enums.DeliveryTaskStatus) *enums.OrderStatus {
	switch status {
	case enums.DeliveryTaskStatusDelivered:
		delivered := enums.OrderStatusDelivered
		return &delivered
	case enums.DeliveryTaskStatusFailed:
		canceled := enums.OrderStatusCanceled
		return &canceled
	default:
		return nil
	}
}
