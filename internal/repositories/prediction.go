package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

// PredictionWriteRepository inserts classification records.
type PredictionWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewPredictionWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *PredictionWriteRepository {
	return &PredictionWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts p and returns the stored row with its generated id and timestamp.
func (r *PredictionWriteRepository) Save(ctx context.Context, p *models.PredictionDB) (*models.PredictionDB, error) {
	const query = `
		INSERT INTO predictions (user_id, image_url, predicted_label, confidence, model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, image_url, predicted_label, confidence, model_version, created_at
	`
	args := []any{p.UserID, p.ImageURL, p.PredictedLabel, p.Confidence, p.ModelVersion}

	var saved models.PredictionDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &saved, query, args...)
	logQuery(query, args, saved.ID, err)

	if err != nil {
		return nil, wrapWriteError(err)
	}
	return &saved, nil
}

// PredictionReadRepository reads classification records.
type PredictionReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewPredictionReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *PredictionReadRepository {
	return &PredictionReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the prediction with id, or nil if there is none.
func (r *PredictionReadRepository) GetByID(ctx context.Context, id int64) (*models.PredictionDB, error) {
	const query = `
		SELECT id, user_id, image_url, predicted_label, confidence, model_version, created_at
		FROM predictions
		WHERE id = $1
	`

	var p models.PredictionDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &p, query, id)
	logQuery(query, []any{id}, p.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

// ListByUserID returns the user's predictions, most recent first.
func (r *PredictionReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.PredictionDB, error) {
	const query = `
		SELECT id, user_id, image_url, predicted_label, confidence, model_version, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	predictions := []models.PredictionDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &predictions, query, userID)
	logQuery(query, []any{userID}, len(predictions), err)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return predictions, nil
}
