package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

// FeedbackWriteRepository inserts feedback records.
type FeedbackWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewFeedbackWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *FeedbackWriteRepository {
	return &FeedbackWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts f and returns the stored row.
func (r *FeedbackWriteRepository) Save(ctx context.Context, f *models.FeedbackDB) (*models.FeedbackDB, error) {
	const query = `
		INSERT INTO feedbacks (user_id, prediction_id, rating, is_correct, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, prediction_id, rating, is_correct, comment, created_at
	`
	args := []any{f.UserID, f.PredictionID, f.Rating, f.IsCorrect, f.Comment}

	var saved models.FeedbackDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &saved, query, args...)
	logQuery(query, args, saved.ID, err)

	if err != nil {
		return nil, wrapWriteError(err)
	}
	return &saved, nil
}

// FeedbackReadRepository reads feedback records.
type FeedbackReadRepository struct {
	db *sqlx.DB
}

func NewFeedbackReadRepository(db *sqlx.DB) *FeedbackReadRepository {
	return &FeedbackReadRepository{db: db}
}

// ListByUserID returns the user's feedback, most recent first.
func (r *FeedbackReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.FeedbackDB, error) {
	const query = `
		SELECT id, user_id, prediction_id, rating, is_correct, comment, created_at
		FROM feedbacks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	feedbacks := []models.FeedbackDB{}
	err := sqlx.SelectContext(ctx, r.db, &feedbacks, query, userID)
	logQuery(query, []any{userID}, len(feedbacks), err)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return feedbacks, nil
}
