package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/logger"
	"rentwheels-backend/internal/security"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// respondError maps domain errors onto HTTP status codes. Validation
// failures are the client's fault (400), stale-state and illegal
// transitions are conflicts the client resolves by refetching (409), and
// anything unrecognized is a 500 with the detail kept server-side.
func respondError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		staleErr      *domain.StaleStateError
		transitionErr *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Reason, Field: validationErr.Field})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "not allowed"})
	case errors.Is(err, security.ErrExpiredToken), errors.Is(err, security.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
	case errors.As(err, &staleErr):
		respondJSON(w, http.StatusConflict, errorResponse{Error: staleErr.Error()})
	case errors.As(err, &transitionErr):
		respondJSON(w, http.StatusConflict, errorResponse{Error: transitionErr.Error()})
	case errors.Is(err, domain.ErrRoundLimitReached):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "negotiation round limit reached"})
	default:
		logger.Error("Unhandled error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
