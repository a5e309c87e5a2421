package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=history.go -destination=mock_history.go -package=services

// PredictionReader reads stored predictions.
type PredictionReader interface {
	GetByID(ctx context.Context, id int64) (*models.PredictionDB, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.PredictionDB, error)
}

// ImagePresigner issues temporary download URLs for stored images.
type ImagePresigner interface {
	PresignGet(ctx context.Context, reference string, ttl time.Duration) (string, error)
}

// DefaultPresignTTL is how long an issued image URL stays valid.
const DefaultPresignTTL = 15 * time.Minute

// PredictionService serves a user's prediction history.
type PredictionService struct {
	reader    PredictionReader
	cache     PredictionCache
	presigner ImagePresigner
	ttl       time.Duration
}

// NewPredictionService creates a PredictionService. cache may be nil.
func NewPredictionService(reader PredictionReader, cache PredictionCache, presigner ImagePresigner, ttl time.Duration) *PredictionService {
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &PredictionService{
		reader:    reader,
		cache:     cache,
		presigner: presigner,
		ttl:       ttl,
	}
}

// ListByUser returns the user's predictions, newest first.
// A history read from the database is cached only if no prediction was
// recorded for the user while it was being read.
func (s *PredictionService) ListByUser(ctx context.Context, userID int64) ([]models.PredictionDB, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, userID)
		if err != nil {
			logger.Log.Warnw("prediction cache read failed", "user_id", userID, "error", err)
		} else if found {
			return cached, nil
		}

		version, err = s.cache.Version(ctx, userID)
		if err != nil {
			logger.Log.Warnw("prediction cache version read failed", "user_id", userID, "error", err)
		} else {
			cacheable = true
		}
	}

	predictions, err := s.reader.ListByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to list predictions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if predictions == nil {
		predictions = []models.PredictionDB{}
	}

	if cacheable {
		if err := s.cache.Set(ctx, userID, version, predictions); err != nil {
			logger.Log.Warnw("prediction cache write failed", "user_id", userID, "error", err)
		}
	}
	return predictions, nil
}

// GetImageURL returns a temporary download URL for the image of one of the
// user's predictions.
func (s *PredictionService) GetImageURL(ctx context.Context, userID, predictionID int64) (string, time.Duration, error) {
	p, err := s.ownedPrediction(ctx, userID, predictionID)
	if err != nil {
		return "", 0, err
	}

	url, err := s.presigner.PresignGet(ctx, p.ImageURL, s.ttl)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return url, s.ttl, nil
}

func (s *PredictionService) ownedPrediction(ctx context.Context, userID, predictionID int64) (*models.PredictionDB, error) {
	p, err := s.reader.GetByID(ctx, predictionID)
	if err != nil {
		logger.Log.Errorw("failed to get prediction", "prediction_id", predictionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrPredictionNotFound, predictionID)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("%w: prediction %d", ErrForbidden, predictionID)
	}
	return p, nil
}
