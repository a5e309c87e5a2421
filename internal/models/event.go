package models

// PredictionRecordedEvent is published after a prediction is committed.
type PredictionRecordedEvent struct {
	EventID        string  `json:"event_id"`        // Unique event identifier
	Timestamp      int64   `json:"timestamp"`       // Unix seconds when the record was committed
	PredictionID   int64   `json:"prediction_id"`   // Stored prediction id
	UserID         int64   `json:"user_id"`         // Owner of the prediction
	PredictedLabel string  `json:"predicted_label"` // Classifier label
	Confidence     float64 `json:"confidence"`      // Classifier confidence
	ModelVersion   string  `json:"model_version"`   // Model tag
	ImageURL       string  `json:"image_url"`       // Stored image locator
}
