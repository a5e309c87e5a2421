package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
)

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Not found
	Error string `json:"error"`
}

// LoginFailedMessage is returned for an unknown email or a wrong password.
const LoginFailedMessage = "Incorrect email or password"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError translates a service error kind into a status and body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		middlewares.WriteUnauthorized(w)
	case errors.Is(err, services.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, LoginFailedMessage)
	case errors.Is(err, services.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "Invalid image")
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrPredictionNotFound):
		writeError(w, http.StatusNotFound, "Prediction not found")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Prediction does not belong to user")
	case errors.Is(err, services.ErrStorageUnavailable):
		logger.Log.Errorw("storage unavailable", "err", err)
		writeError(w, http.StatusBadGateway, "Image storage unavailable")
	case errors.Is(err, services.ErrClassificationFailed):
		logger.Log.Errorw("classification failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Classification failed")
	case errors.Is(err, services.ErrPredictionNotSaved):
		logger.Log.Errorw("prediction not saved", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to save prediction")
	default:
		logger.Log.Errorw("internal server error", "err", err)
		writeError(w, http.StatusInternalServerError, middlewares.InternalErrorMessage)
	}
}
