package models

import "time"

// FeedbackDB is a user's opinion about one of their predictions.
type FeedbackDB struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	PredictionID int64     `json:"prediction_id" db:"prediction_id"`
	Rating       *int      `json:"rating" db:"rating"`
	IsCorrect    *bool     `json:"is_correct" db:"is_correct"`
	Comment      *string   `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FeedbackCreate holds the caller supplied part of a feedback record.
type FeedbackCreate struct {
	PredictionID int64
	Rating       *int
	IsCorrect    *bool
	Comment      *string
}
