package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orbit-delivery/orbit-backend/api/responses"
	"github.com/orbit-delivery/orbit-backend/api/validators"
	"github.com/orbit-delivery/orbit-backend/internal/couriers"
	"github.com/orbit-delivery/orbit-backend/internal/tasks"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
)

func taskIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "taskID")
	taskID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid task id")
	}
	return taskID, nil
}

// CourierAcceptTask lets the acting courier claim a task.
func CourierAcceptTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		taskID, err := taskIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.AcceptTask(r.Context(), userID, taskID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, taskResponseFromModel(task))
	}
}

type taskStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note"`
}

func (r taskStatusRequest) toInput() (tasks.StatusInput, error) {
	status, err := enums.ParseDeliveryTaskStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return tasks.StatusInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid task status")
	}
	return tasks.StatusInput{Status: status, Note: r.Note}, nil
}

// CourierUpdateTaskStatus moves the courier's own task through the state machine.
func CourierUpdateTaskStatus(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

		task, err := svc.UpdateTaskStatus(r.Context(), userID, taskID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, taskResponseFromModel(task))
	}
}

// CourierListTasks returns the acting courier's tasks, optionally filtered by
// a comma-separated status query parameter.
func CourierListTasks(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var statuses []enums.DeliveryTaskStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				status, parseErr := enums.ParseDeliveryTaskStatus(strings.TrimSpace(part))
				if parseErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid task status filter"))
					return
				}
				statuses = append(statuses, status)
			}
		}

		list, err := svc.ListCourierTasks(r.Context(), userID, statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]any, 0, len(list))
		for i := range list {
			payload = append(payload, taskResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}

type courierOnlineRequest struct {
	Online *bool `json:"online" validate:"required"`
}

// CourierToggleOnline flips courier availability.
func CourierToggleOnline(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload courierOnlineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.ToggleOnline(r.Context(), userID, *payload.Online)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"courier_id": courier.ID,
			"online":     courier.Online,
		})
	}
}

type courierLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

// CourierLocation records a GPS breadcrumb for the acting courier.
func CourierLocation(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload courierLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.RecordLocation(r.Context(), userID, *payload.Latitude, *payload.Longitude)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"courier_id": courier.ID,
		})
	}
}
