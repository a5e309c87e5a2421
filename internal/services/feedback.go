package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=feedback.go -destination=mock_feedback.go -package=services

// MaxCommentLength bounds a feedback comment, in characters.
const MaxCommentLength = 2000

// PredictionGetter loads a single prediction.
type PredictionGetter interface {
	GetByID(ctx context.Context, id int64) (*models.PredictionDB, error)
}

// FeedbackWriter persists feedback.
type FeedbackWriter interface {
	Save(ctx context.Context, f *models.FeedbackDB) (*models.FeedbackDB, error)
}

// FeedbackReader lists feedback.
type FeedbackReader interface {
	ListByUserID(ctx context.Context, userID int64) ([]models.FeedbackDB, error)
}

// FeedbackService records users' opinions about their predictions.
type FeedbackService struct {
	predictions PredictionGetter
	writer      FeedbackWriter
	reader      FeedbackReader
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(predictions PredictionGetter, writer FeedbackWriter, reader FeedbackReader) *FeedbackService {
	return &FeedbackService{
		predictions: predictions,
		writer:      writer,
		reader:      reader,
	}
}

// Submit stores feedback for one of the user's own predictions.
func (s *FeedbackService) Submit(ctx context.Context, userID int64, in models.FeedbackCreate) (*models.FeedbackDB, error) {
	if err := validateFeedback(in); err != nil {
		return nil, err
	}

	p, err := s.predictions.GetByID(ctx, in.PredictionID)
	if err != nil {
		logger.Log.Errorw("failed to get prediction", "prediction_id", in.PredictionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrPredictionNotFound, in.PredictionID)
	}
	if p.UserID != userID {
		logger.Log.Infow("feedback on foreign prediction", "user_id", userID, "prediction_id", in.PredictionID)
		return nil, fmt.Errorf("%w: prediction %d", ErrForbidden, in.PredictionID)
	}

	saved, err := s.writer.Save(ctx, &models.FeedbackDB{
		UserID:       userID,
		PredictionID: in.PredictionID,
		Rating:       in.Rating,
		IsCorrect:    in.IsCorrect,
		Comment:      in.Comment,
	})
	if err != nil {
		logger.Log.Errorw("failed to save feedback", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return saved, nil
}

// ListByUser returns the feedback the user has left, newest first.
func (s *FeedbackService) ListByUser(ctx context.Context, userID int64) ([]models.FeedbackDB, error) {
	items, err := s.reader.ListByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to list feedback", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if items == nil {
		items = []models.FeedbackDB{}
	}
	return items, nil
}

func validateFeedback(in models.FeedbackCreate) error {
	if in.PredictionID <= 0 {
		return fmt.Errorf("%w: prediction_id must be positive", ErrInvalidInput)
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if in.Comment != nil && utf8.RuneCountInString(*in.Comment) > MaxCommentLength {
		return fmt.Errorf("%w: comment is too long", ErrInvalidInput)
	}
	return nil
}
