package models

import "time"

// DefaultModelVersion tags predictions made by the bundled ResNet-50 export.
const DefaultModelVersion = "resnet50_v1"

// PredictionDB is a stored classification result.
type PredictionDB struct {
	ID             int64     `json:"id" db:"id"`                           // Primary key
	UserID         int64     `json:"user_id" db:"user_id"`                 // Owner
	ImageURL       string    `json:"image_url" db:"image_url"`             // Locator of the stored image
	PredictedLabel string    `json:"predicted_label" db:"predicted_label"` // One of the classifier labels
	Confidence     float64   `json:"confidence" db:"confidence"`           // Softmax probability of PredictedLabel
	ModelVersion   string    `json:"model_version" db:"model_version"`     // Model tag at prediction time
	CreatedAt      time.Time `json:"created_at" db:"created_at"`           // Creation timestamp
}
