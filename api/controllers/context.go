package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/orbit-delivery/orbit-backend/api/middleware"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
)

// callerID resolves the authenticated user id injected by the identity
// middleware.
func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}
