package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/jwt"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=predict.go -destination=mock_predict.go -package=handlers

// MaxUploadSize is the largest accepted image, in bytes.
const MaxUploadSize = 10 << 20

// multipartOverhead leaves room for boundaries and part headers.
const multipartOverhead = 1 << 20

// Predictor runs the classification pipeline for one upload.
// Authenticate is called before the upload is read.
type Predictor interface {
	Authenticate(ctx context.Context, token string) (int64, error)
	Predict(ctx context.Context, userID int64, data []byte, contentType, filename string) (*models.PredictionDB, error)
}

// PredictionResponse is a stored classification
// swagger:model PredictionResponse
type PredictionResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ImageURL       string    `json:"image_url"`
	PredictedLabel string    `json:"predicted_label"`
	Confidence     float64   `json:"confidence"`
	ModelVersion   string    `json:"model_version"`
	CreatedAt      time.Time `json:"created_at"`
}

func newPredictionResponse(p *models.PredictionDB) PredictionResponse {
	return PredictionResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		ImageURL:       p.ImageURL,
		PredictedLabel: p.PredictedLabel,
		Confidence:     p.Confidence,
		ModelVersion:   p.ModelVersion,
		CreatedAt:      p.CreatedAt,
	}
}

// NewPredictHandler returns an HTTP handler that classifies an uploaded leaf image.
// @Summary Classify a leaf image
// @Description Classifies the uploaded image, stores it and records the result for the caller.
// @Tags predictions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Leaf image"
// @Success 200 {object} handlers.PredictionResponse
// @Failure 400 {object} handlers.ErrorResponse "Not an image"
// @Failure 401 {object} handlers.ErrorResponse "Could not validate credentials"
// @Failure 413 {object} handlers.ErrorResponse "File too large"
// @Failure 500 {object} handlers.ErrorResponse
// @Failure 502 {object} handlers.ErrorResponse "Image storage unavailable"
// @Router /predict [post]
func NewPredictHandler(svc Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := jwt.GetTokenFromRequest(r)
		if err != nil {
			logger.Log.Infow("authorization failed", "err", err)
			middlewares.WriteUnauthorized(w)
			return
		}

		userID, err := svc.Authenticate(r.Context(), token)
		if err != nil {
			logger.Log.Infow("authorization failed", "err", err)
			writeServiceError(w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+multipartOverhead)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read file")
			return
		}
		if len(data) > MaxUploadSize {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}

		p, err := svc.Predict(r.Context(), userID, data, header.Header.Get("Content-Type"), header.Filename)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newPredictionResponse(p))
	}
}
