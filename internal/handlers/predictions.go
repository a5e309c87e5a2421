package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=predictions.go -destination=mock_predictions.go -package=handlers

// PredictionLister returns a user's prediction history.
type PredictionLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.PredictionDB, error)
}

// ImageURLGetter issues temporary image URLs.
type ImageURLGetter interface {
	GetImageURL(ctx context.Context, userID, predictionID int64) (string, time.Duration, error)
}

// ImageURLResponse is a temporary download link
// swagger:model ImageURLResponse
type ImageURLResponse struct {
	URL string `json:"url"`

	// Seconds until the link stops working
	// default: 900
	ExpiresIn int64 `json:"expires_in"`
}

// NewListPredictionsHandler returns the caller's predictions, most recent first.
// @Summary My predictions
// @Tags predictions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} handlers.PredictionResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Router /predictions/me [get]
func NewListPredictionsHandler(svc PredictionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			middlewares.WriteUnauthorized(w)
			return
		}

		predictions, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]PredictionResponse, 0, len(predictions))
		for i := range predictions {
			resp = append(resp, newPredictionResponse(&predictions[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// NewImageURLHandler returns a presigned URL for the image of one of the caller's predictions.
// @Summary Prediction image URL
// @Tags predictions
// @Produce json
// @Security BearerAuth
// @Param prediction_id path int true "Prediction ID"
// @Success 200 {object} handlers.ImageURLResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /predictions/{prediction_id}/image-url [get]
func NewImageURLHandler(svc ImageURLGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			middlewares.WriteUnauthorized(w)
			return
		}

		predictionID, err := pathID(r, "prediction_id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid prediction id")
			return
		}

		url, ttl, err := svc.GetImageURL(r.Context(), userID, predictionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ImageURLResponse{
			URL:       url,
			ExpiresIn: int64(ttl / time.Second),
		})
	}
}
