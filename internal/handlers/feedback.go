package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=feedback.go -destination=mock_feedback.go -package=handlers

// FeedbackSubmitter records feedback.
type FeedbackSubmitter interface {
	Submit(ctx context.Context, userID int64, in models.FeedbackCreate) (*models.FeedbackDB, error)
}

// FeedbackLister lists a user's feedback.
type FeedbackLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.FeedbackDB, error)
}

// FeedbackRequest represents the JSON body for leaving feedback
// swagger:model FeedbackRequest
type FeedbackRequest struct {
	// required: true
	// default: 1
	PredictionID int64 `json:"prediction_id"`

	// From 1 to 5
	// default: 5
	Rating *int `json:"rating,omitempty"`

	// Whether the predicted label was right
	IsCorrect *bool `json:"is_correct,omitempty"`

	Comment *string `json:"comment,omitempty"`
}

// FeedbackResponse is a stored feedback record
// swagger:model FeedbackResponse
type FeedbackResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	PredictionID int64     `json:"prediction_id"`
	Rating       *int      `json:"rating"`
	IsCorrect    *bool     `json:"is_correct"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

func newFeedbackResponse(f *models.FeedbackDB) FeedbackResponse {
	return FeedbackResponse{
		ID:           f.ID,
		UserID:       f.UserID,
		PredictionID: f.PredictionID,
		Rating:       f.Rating,
		IsCorrect:    f.IsCorrect,
		Comment:      f.Comment,
		CreatedAt:    f.CreatedAt,
	}
}

// NewCreateFeedbackHandler returns an HTTP handler for leaving feedback on a prediction.
// @Summary Leave feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.FeedbackRequest true "Feedback"
// @Success 201 {object} handlers.FeedbackResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse "Prediction belongs to another user"
// @Failure 404 {object} handlers.ErrorResponse "Prediction not found"
// @Router /feedback/ [post]
func NewCreateFeedbackHandler(svc FeedbackSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			middlewares.WriteUnauthorized(w)
			return
		}

		var req FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		fb, err := svc.Submit(r.Context(), userID, models.FeedbackCreate{
			PredictionID: req.PredictionID,
			Rating:       req.Rating,
			IsCorrect:    req.IsCorrect,
			Comment:      req.Comment,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newFeedbackResponse(fb))
	}
}

// NewListFeedbackHandler returns the caller's feedback, most recent first.
// @Summary My feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {array} handlers.FeedbackResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Router /feedback/me [get]
func NewListFeedbackHandler(svc FeedbackLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			middlewares.WriteUnauthorized(w)
			return
		}

		items, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]FeedbackResponse, 0, len(items))
		for i := range items {
			resp = append(resp, newFeedbackResponse(&items[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
