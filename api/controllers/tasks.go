package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbit-delivery/orbit-backend/api/responses"
	"github.com/orbit-delivery/orbit-backend/api/validators"
	"github.com/orbit-delivery/orbit-backend/internal/tasks"
	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
)

type taskResponse struct {
	ID        uuid.UUID                `json:"id"`
	OrderID   uuid.UUID                `json:"order_id"`
	Status    enums.DeliveryTaskStatus `json:"status"`
	CourierID *uuid.UUID               `json:"courier_id,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func taskResponseFromModel(m *models.DeliveryTask) taskResponse {
	return taskResponse{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Status:    m.Status,
		CourierID: m.CourierID,
		UpdatedAt: m.UpdatedAt,
	}
}

type taskAssignRequest struct {
	TaskID    string  `json:"task_id" validate:"required"`
	CourierID *string `json:"courier_id"`
	UserID    *string `json:"user_id"`
}

func (r taskAssignRequest) toInput() (uuid.UUID, tasks.AssignInput, error) {
	taskID, err := uuid.Parse(strings.TrimSpace(r.TaskID))
	if err != nil {
		return uuid.Nil, tasks.AssignInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid task_id")
	}

	var input tasks.AssignInput
	if r.CourierID != nil {
		courierID, err := uuid.Parse(strings.TrimSpace(*r.CourierID))
		if err != nil {
			return uuid.Nil, tasks.AssignInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid courier_id")
		}
		input.CourierID = &courierID
	}
	if r.UserID != nil {
		userID, err := uuid.Parse(strings.TrimSpace(*r.UserID))
		if err != nil {
			return uuid.Nil, tasks.AssignInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id")
		}
		input.UserID = &userID
	}
	return taskID, input, nil
}

// AdminAssignTask forces a courier onto a task from the dispatch console.
func AdminAssignTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		var payload taskAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		taskID, input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.Assign(r.Context(), taskID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, taskResponseFromModel(task))
	}
}

// AdminUpdateTaskStatus transitions any task without an ownership check.
func AdminUpdateTaskStatus(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		taskID, err := taskIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload taskStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.UpdateStatus(r.Context(), taskID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, taskResponseFromModel(task))
	}
}
