package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

func setupTasksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL,
  address_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	tasks := `
CREATE TABLE IF NOT EXISTS delivery_tasks (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  courier_id TEXT,
  pickup_address TEXT NOT NULL,
  pickup_latitude REAL NOT NULL,
  pickup_longitude REAL NOT NULL,
  dropoff_address TEXT NOT NULL,
  dropoff_latitude REAL NOT NULL,
  dropoff_longitude REAL NOT NULL,
  package_size TEXT,
  package_weight NUMERIC,
  instructions TEXT,
  scheduled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	events := `
CREATE TABLE IF NOT EXISTS task_events (
  id TEXT PRIMARY KEY,
  task_id TEXT NOT NULL,
  status TEXT NOT NULL,
  note TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(tasks).Error)
	require.NoError(t, db.Exec(events).Error)

	return db
}

func createTask(t *testing.T, db *gorm.DB, courierID *uuid.UUID, status enums.DeliveryTaskStatus, created time.Time) *models.DeliveryTask {
	t.Helper()

	task := &models.DeliveryTask{
		ID:               uuid.New(),
		OrderID:          uuid.New(),
		Status:           status,
		CourierID:        courierID,
		PickupAddress:    "12 Depot Way",
		PickupLatitude:   40.71,
		PickupLongitude:  -74.0,
		DropoffAddress:   "88 Harbor St",
		DropoffLatitude:  40.73,
		DropoffLongitude: -73.99,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestFindTaskMissingReturnsNil(t *testing.T) {
	db := setupTasksTestDB(t)
	repo := NewRepository(db)

	task, err := repo.FindTask(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestListByCourierFiltersStatuses(t *testing.T) {
	db := setupTasksTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	courierID := uuid.New()
	otherID := uuid.New()
	assigned := createTask(t, db, &courierID, enums.DeliveryTaskStatusAssigned, now)
	createTask(t, db, &courierID, enums.DeliveryTaskStatusDelivered, now.Add(-time.Hour))
	createTask(t, db, &otherID, enums.DeliveryTaskStatusAssigned, now)

	list, err := repo.ListByCourier(context.Background(), courierID, []enums.DeliveryTaskStatus{enums.DeliveryTaskStatusAssigned})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, assigned.ID, list[0].ID)

	list, err = repo.ListByCourier(context.Background(), courierID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdateTaskPersistsStatusAndCourier(t *testing.T) {
	db := setupTasksTestDB(t)
	repo := NewRepository(db)

	task := createTask(t, db, nil, enums.DeliveryTaskStatusCreated, time.Now().UTC())
	courierID := uuid.New()
	task.Status = enums.DeliveryTaskStatusAssigned
	task.CourierID = &courierID
	require.NoError(t, repo.UpdateTask(context.Background(), task))

	loaded, err := repo.FindTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, enums.DeliveryTaskStatusAssigned, loaded.Status)
	require.NotNil(t, loaded.CourierID)
	assert.Equal(t, courierID, *loaded.CourierID)
}

func TestFindTaskWithEventsOrdersAscending(t *testing.T) {
	db := setupTasksTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	task := createTask(t, db, nil, enums.DeliveryTaskStatusAssigned, now)
	later := &models.TaskEvent{ID: uuid.New(), TaskID: task.ID, Status: enums.DeliveryTaskStatusAssigned, CreatedAt: now.Add(time.Minute)}
	require.NoError(t, db.Create(later).Error)
	first := &models.TaskEvent{ID: uuid.New(), TaskID: task.ID, Status: enums.DeliveryTaskStatusCreated, CreatedAt: now}
	require.NoError(t, db.Create(first).Error)

	loaded, err := repo.FindTaskWithEvents(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Events, 2)
	assert.Equal(t, enums.DeliveryTaskStatusCreated, loaded.Events[0].Status)
	assert.Equal(t, enums.DeliveryTaskStatusAssigned, loaded.Events[1].Status)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupTasksTestDB(t)
	repo := NewRepository(db)

	order := &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   enums.OrderTypeBox,
		Status: enums.OrderStatusConfirmed,
	}
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, repo.UpdateOrderStatus(context.Background(), order.ID, enums.OrderStatusDelivered))
	var loaded models.Order
	require.NoError(t, db.First(&loaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, loaded.Status)

	err := repo.UpdateOrderStatus(context.Background(), uuid.New(), enums.OrderStatusDelivered)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
