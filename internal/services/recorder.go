package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=recorder.go -destination=mock_recorder.go -package=services

// Transactor runs fn inside a database transaction.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// PredictionWriter persists predictions.
type PredictionWriter interface {
	Save(ctx context.Context, p *models.PredictionDB) (*models.PredictionDB, error)
}

// PredictionCache caches a user's prediction history.
// Invalidate bumps a per-user version, and Set stores a history only while the
// version it was read at is still current.
type PredictionCache interface {
	Get(ctx context.Context, userID int64) ([]models.PredictionDB, bool, error)
	Version(ctx context.Context, userID int64) (int64, error)
	Set(ctx context.Context, userID, version int64, predictions []models.PredictionDB) error
	Invalidate(ctx context.Context, userID int64) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// ClassificationRecorder stores prediction records.
type ClassificationRecorder struct {
	tx          Transactor
	writer      PredictionWriter
	cache       PredictionCache
	kafkaWriter KafkaWriter
	now         func() time.Time
}

// NewClassificationRecorder creates a recorder. cache and kafkaWriter may be nil.
func NewClassificationRecorder(
	tx Transactor,
	writer PredictionWriter,
	cache PredictionCache,
	kafkaWriter KafkaWriter,
) *ClassificationRecorder {
	return &ClassificationRecorder{
		tx:          tx,
		writer:      writer,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		now:         time.Now,
	}
}

// Record durably inserts one prediction. Nothing is stored when it fails.
func (r *ClassificationRecorder) Record(
	ctx context.Context,
	userID int64,
	imageURL, label string,
	confidence float64,
	modelVersion string,
) (*models.PredictionDB, error) {
	if modelVersion == "" {
		modelVersion = models.DefaultModelVersion
	}

	var saved *models.PredictionDB
	err := r.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = r.writer.Save(ctx, &models.PredictionDB{
			UserID:         userID,
			ImageURL:       imageURL,
			PredictedLabel: label,
			Confidence:     confidence,
			ModelVersion:   modelVersion,
		})
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to record prediction", "user_id", userID, "image_url", imageURL, "error", err)
		return nil, err
	}

	r.invalidate(ctx, userID)
	r.publish(ctx, saved)

	return saved, nil
}

func (r *ClassificationRecorder) invalidate(ctx context.Context, userID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, userID); err != nil {
		logger.Log.Warnw("failed to invalidate prediction cache", "user_id", userID, "error", err)
	}
}

// publish sends a PredictionRecordedEvent to Kafka.
func (r *ClassificationRecorder) publish(ctx context.Context, p *models.PredictionDB) {
	if r.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "prediction_id", p.ID)
		return
	}

	event := models.PredictionRecordedEvent{
		EventID:        uuid.NewString(),
		Timestamp:      r.now().Unix(),
		PredictionID:   p.ID,
		UserID:         p.UserID,
		PredictedLabel: p.PredictedLabel,
		Confidence:     p.Confidence,
		ModelVersion:   p.ModelVersion,
		ImageURL:       p.ImageURL,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal prediction event", "prediction_id", p.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(p.UserID, 10)),
		Value: data,
	}

	if err := r.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish prediction event", "prediction_id", p.ID, "error", err)
	} else {
		logger.Log.Infow("Prediction event published", "prediction_id", p.ID, "event_id", event.EventID)
	}
}
