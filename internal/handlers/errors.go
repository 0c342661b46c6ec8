package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lexicon/internal/apperrors"
	"lexicon/internal/logger"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithComponent("http").Error("failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, r *http.Request, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log := logger.FromContext(r.Context())
		if status < http.StatusInternalServerError {
			log.Warn(logMsg, "error", err, "status", status)
		} else {
			log.Error(logMsg, "error", err, "status", status)
		}
	}

	respondJSON(w, status, errorResponse{Error: userMsg, RequestID: logger.RequestID(r.Context())})
}

// respondWithAppError maps err onto a status through apperrors. An
// AppError's message is shown to the client as is.
func respondWithAppError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	status := apperrors.HTTPStatusCode(err)

	userMsg := ErrInternalServerError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr) && appErr.Message != "":
		userMsg = appErr.Message
	case status == http.StatusServiceUnavailable:
		userMsg = ErrStoreUnavailable
	}
	respondWithError(w, r, status, userMsg, logMsg, err)
}
