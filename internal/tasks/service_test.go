package tasks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

// fakeTaskRepo keeps tasks and their audit trail in memory.
type fakeTaskRepo struct {
	tasks       map[uuid.UUID]*models.DeliveryTask
	taskEvents  []models.TaskEvent
	orders      map[uuid.UUID]enums.OrderStatus
	orderEvents []models.OrderEvent
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:  make(map[uuid.UUID]*models.DeliveryTask),
		orders: make(map[uuid.UUID]enums.OrderStatus),
	}
}

func (f *fakeTaskRepo) seedTask(status enums.DeliveryTaskStatus, courierID *uuid.UUID) *models.DeliveryTask {
	task := &models.DeliveryTask{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		Status:    status,
		CourierID: courierID,
	}
	f.tasks[task.ID] = task
	f.orders[task.OrderID] = enums.OrderStatusConfirmed
	return task
}

func (f *fakeTaskRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeTaskRepo) FindTask(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) FindTaskWithEvents(ctx context.Context, taskID uuid.UUID) (*models.DeliveryTask, error) {
	return f.FindTask(ctx, taskID)
}

func (f *fakeTaskRepo) ListByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.DeliveryTaskStatus) ([]models.DeliveryTask, error) {
	var out []models.DeliveryTask
	for _, task := range f.tasks {
		if task.CourierID == nil || *task.CourierID != courierID {
			continue
		}
		if len(statuses) > 0 {
			matched := false
			for _, status := range statuses {
				if task.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) UpdateTask(ctx context.Context, task *models.DeliveryTask) error {
	stored := f.tasks[task.ID]
	stored.Status = task.Status
	stored.CourierID = task.CourierID
	return nil
}

func (f *fakeTaskRepo) AppendEvent(ctx context.Context, event *models.TaskEvent) error {
	event.ID = uuid.New()
	f.taskEvents = append(f.taskEvents, *event)
	return nil
}

func (f *fakeTaskRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if _, ok := f.orders[orderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.orders[orderID] = status
	return nil
}

func (f *fakeTaskRepo) CreateOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	event.ID = uuid.New()
	f.orderEvents = append(f.orderEvents, *event)
	return nil
}

// stubDirectory resolves couriers from a fixed user-to-courier map.
type stubDirectory struct {
	byUser map[uuid.UUID]*models.Courier
	byID   map[uuid.UUID]*models.Courier
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		byUser: make(map[uuid.UUID]*models.Courier),
		byID:   make(map[uuid.UUID]*models.Courier),
	}
}

func (s *stubDirectory) addCourier(userID uuid.UUID) *models.Courier {
	courier := &models.Courier{ID: uuid.New(), UserID: userID}
	s.byUser[userID] = courier
	s.byID[courier.ID] = courier
	return courier
}

func (s *stubDirectory) EnsureCourier(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	if courier, ok := s.byUser[userID]; ok {
		return courier, nil
	}
	return s.addCourier(userID), nil
}

func (s *stubDirectory) FindCourierByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	return s.byUser[userID], nil
}

func (s *stubDirectory) FindCourierByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	return s.byID[courierID], nil
}

// recordingSink captures emitted notifications.
type recordingSink struct {
	taskUpdates  []enums.DeliveryTaskStatus
	orderUpdates []enums.OrderStatus
}

func (r *recordingSink) OrderUpdated(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) {
	r.orderUpdates = append(r.orderUpdates, status)
}

func (r *recordingSink) TaskUpdated(ctx context.Context, taskID uuid.UUID, status enums.DeliveryTaskStatus) {
	r.taskUpdates = append(r.taskUpdates, status)
}

type passthroughRunner struct{}

func (passthroughRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTaskService(t *testing.T, repo Repository, dir courierDirectory, sink *recordingSink) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:              repo,
		TransactionRunner: passthroughRunner{},
		Couriers:          dir,
		Sink:              sink,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestAcceptTaskClaimsUnassignedTask(t *testing.T) {
	repo := newFakeTaskRepo()
	task := repo.seedTask(enums.DeliveryTaskStatusCreated, nil)
	dir := newStubDirectory()
	sink := &recordingSink{}
	svc := newTaskService(t, repo, dir, sink)

	userID := uuid.New()
	updated, err := svc.AcceptTask(context.Background(), userID, task.ID)
	if err != nil {
		t.Fatalf("AcceptTask returned error: %v", err)
	}

	if updated.Status != enums.DeliveryTaskStatusAssigned {
		t.Fatalf("expected ASSIGNED, got %s", updated.Status)
	}
	courier := dir.byUser[userID]
	if updated.CourierID == nil || *updated.CourierID != courier.ID {
		t.Fatal("task should be claimed by the auto-provisioned courier")
	}
	if len(repo.taskEvents) != 1 || repo.taskEvents[0].Note == nil || *repo.taskEvents[0].Note != "Courier accepted task" {
		t.Fatalf("expected an accept audit event, got %+v", repo.taskEvents)
	}
	if len(sink.taskUpdates) != 1 || sink.taskUpdates[0] != enums.DeliveryTaskStatusAssigned {
		t.Fatalf("expected one ASSIGNED notification, got %+v", sink.taskUpdates)
	}
}

func TestAcceptTaskRejectsForeignTask(t *testing.T) {
	repo := newFakeTaskRepo()
	other := uuid.New()
	task := repo.seedTask(enums.DeliveryTaskStatusAssigned, &other)
	svc := newTaskService(t, repo, newStubDirectory(), &recordingSink{})

	_, err := svc.AcceptTask(context.Background(), uuid.New(), task.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for a claimed task, got %v", err)
	}
}

func TestAssignByUserWithoutProfileFails(t *testing.T) {
	repo := newFakeTaskRepo()
	task := repo.seedTask(enums.DeliveryTaskStatusCreated, nil)
	svc := newTaskService(t, repo, newStubDirectory(), &recordingSink{})

	userID := uuid.New()
	_, err := svc.Assign(context.Background(), task.ID, AssignInput{UserID: &userID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing courier profile, got %v", err)
	}
}

func TestAssignByCourierID(t *testing.T) {
	repo := newFakeTaskRepo()
	task := repo.seedTask(enums.DeliveryTaskStatusCreated, nil)
	dir := newStubDirectory()
	courier := dir.addCourier(uuid.New())
	svc := newTaskService(t, repo, dir, &recordingSink{})

	updated, err := svc.Assign(context.Background(), task.ID, AssignInput{CourierID: &courier.ID})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if updated.Status != enums.DeliveryTaskStatusAssigned || updated.CourierID == nil || *updated.CourierID != courier.ID {
		t.Fatalf("unexpected assignment result %+v", updated)
	}
}

func TestAssignMissingTaskIsNotFound(t *testing.T) {
	dir := newStubDirectory()
	courier := dir.addCourier(uuid.New())
	svc := newTaskService(t, newFakeTaskRepo(), dir, &recordingSink{})

	_, err := svc.Assign(context.Background(), uuid.New(), AssignInput{CourierID: &courier.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateTaskStatusRejectsCreated(t *testing.T) {
	repo := newFakeTaskRepo()
	userID := uuid.New()
	dir := newStubDirectory()
	courier := dir.addCourier(userID)
	task := repo.seedTask(enums.DeliveryTaskStatusAssigned, &courier.ID)
	svc := newTaskService(t, repo, dir, &recordingSink{})

	_, err := svc.UpdateTaskStatus(context.Background(), userID, task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusCreated,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for CREATED, got %v", err)
	}
}

func TestUpdateTaskStatusRejectsForeignTask(t *testing.T) {
	repo := newFakeTaskRepo()
	other := uuid.New()
	task := repo.seedTask(enums.DeliveryTaskStatusAssigned, &other)
	svc := newTaskService(t, repo, newStubDirectory(), &recordingSink{})

	_, err := svc.UpdateTaskStatus(context.Background(), uuid.New(), task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusPickedUp,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for foreign task, got %v", err)
	}
}

func TestUpdateTaskStatusDeliveredPropagatesToOrder(t *testing.T) {
	repo := newFakeTaskRepo()
	userID := uuid.New()
	dir := newStubDirectory()
	courier := dir.addCourier(userID)
	task := repo.seedTask(enums.DeliveryTaskStatusInTransit, &courier.ID)
	sink := &recordingSink{}
	svc := newTaskService(t, repo, dir, sink)

	updated, err := svc.UpdateTaskStatus(context.Background(), userID, task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusDelivered,
	})
	if err != nil {
		t.Fatalf("UpdateTaskStatus returned error: %v", err)
	}

	if updated.Status != enums.DeliveryTaskStatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", updated.Status)
	}
	if got := repo.orders[task.OrderID]; got != enums.OrderStatusDelivered {
		t.Fatalf("order should follow the task to DELIVERED, got %s", got)
	}
	if len(repo.orderEvents) != 1 || repo.orderEvents[0].Status != enums.OrderStatusDelivered {
		t.Fatalf("expected one DELIVERED order event, got %+v", repo.orderEvents)
	}
	if len(sink.orderUpdates) != 1 || sink.orderUpdates[0] != enums.OrderStatusDelivered {
		t.Fatalf("expected one order notification, got %+v", sink.orderUpdates)
	}
}

func TestUpdateTaskStatusFailedCancelsOrder(t *testing.T) {
	repo := newFakeTaskRepo()
	userID := uuid.New()
	dir := newStubDirectory()
	courier := dir.addCourier(userID)
	task := repo.seedTask(enums.DeliveryTaskStatusPickedUp, &courier.ID)
	svc := newTaskService(t, repo, dir, &recordingSink{})

	if _, err := svc.UpdateTaskStatus(context.Background(), userID, task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusFailed,
	}); err != nil {
		t.Fatalf("UpdateTaskStatus returned error: %v", err)
	}

	if got := repo.orders[task.OrderID]; got != enums.OrderStatusCanceled {
		t.Fatalf("failed delivery should cancel the order, got %s", got)
	}
}

func TestUpdateTaskStatusAdoptsUnassignedTask(t *testing.T) {
	repo := newFakeTaskRepo()
	userID := uuid.New()
	dir := newStubDirectory()
	courier := dir.addCourier(userID)
	task := repo.seedTask(enums.DeliveryTaskStatusCreated, nil)
	svc := newTaskService(t, repo, dir, &recordingSink{})

	updated, err := svc.UpdateTaskStatus(context.Background(), userID, task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusPickedUp,
	})
	if err != nil {
		t.Fatalf("UpdateTaskStatus returned error: %v", err)
	}
	if updated.CourierID == nil || *updated.CourierID != courier.ID {
		t.Fatal("unassigned task should adopt the acting courier")
	}
}

func TestUpdateStatusSkipsOwnershipCheck(t *testing.T) {
	repo := newFakeTaskRepo()
	other := uuid.New()
	task := repo.seedTask(enums.DeliveryTaskStatusAssigned, &other)
	svc := newTaskService(t, repo, newStubDirectory(), &recordingSink{})

	note := "dispatch override"
	updated, err := svc.UpdateStatus(context.Background(), task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusInTransit,
		Note:   &note,
	})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != enums.DeliveryTaskStatusInTransit {
		t.Fatalf("expected IN_TRANSIT, got %s", updated.Status)
	}
	if updated.CourierID == nil || *updated.CourierID != other {
		t.Fatal("dispatch updates must preserve the assigned courier")
	}
	if len(repo.taskEvents) != 1 || repo.taskEvents[0].Note == nil || *repo.taskEvents[0].Note != note {
		t.Fatalf("expected the note on the audit event, got %+v", repo.taskEvents)
	}
}

func TestTransitionsRejectedOnSettledTask(t *testing.T) {
	repo := newFakeTaskRepo()
	userID := uuid.New()
	dir := newStubDirectory()
	courier := dir.addCourier(userID)
	task := repo.seedTask(enums.DeliveryTaskStatusDelivered, &courier.ID)
	svc := newTaskService(t, repo, dir, &recordingSink{})

	_, err := svc.UpdateTaskStatus(context.Background(), userID, task.ID, StatusInput{
		Status: enums.DeliveryTaskStatusFailed,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on a settled task, got %v", err)
	}
}

func TestListCourierTasksFiltersByStatus(t *testing.T) {
	repo := newFakeTaskRepo()
	userID := uuid.New()
	dir := newStubDirectory()
	courier := dir.addCourier(userID)
	repo.seedTask(enums.DeliveryTaskStatusAssigned, &courier.ID)
	repo.seedTask(enums.DeliveryTaskStatusDelivered, &courier.ID)
	svc := newTaskService(t, repo, dir, &recordingSink{})

	tasks, err := svc.ListCourierTasks(context.Background(), userID, []enums.DeliveryTaskStatus{
		enums.DeliveryTaskStatusAssigned,
	})
	if err != nil {
		t.Fatalf("ListCourierTasks returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != enums.DeliveryTaskStatusAssigned {
		t.Fatalf("expected only the ASSIGNED task, got %+v", tasks)
	}
}
