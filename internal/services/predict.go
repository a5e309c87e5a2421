package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/classifier"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/facades"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=predict.go -destination=mock_predict.go -package=services

// TokenResolver maps a bearer token to the id of an existing user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// ImageClassifier labels an encoded image.
type ImageClassifier interface {
	Classify(ctx context.Context, data []byte) (string, float64, error)
}

// ImageStorer uploads an image and returns its locator.
type ImageStorer interface {
	Store(ctx context.Context, data []byte, predictedClass, extension, contentType string) (string, error)
}

// Recorder persists a classification result.
type Recorder interface {
	Record(ctx context.Context, userID int64, imageURL, label string, confidence float64, modelVersion string) (*models.PredictionDB, error)
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".tif":  {},
	".tiff": {},
}

// ExtensionFromFilename returns the lowercased image extension of filename or
// facades.DefaultExtension when it has none that is recognised.
func ExtensionFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageExtensions[ext]; ok {
		return ext
	}
	return facades.DefaultExtension
}

// IsImageContentType reports whether contentType declares an image media type.
func IsImageContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// PredictService runs the authenticate, validate, classify, store, record pipeline.
type PredictService struct {
	resolver     TokenResolver
	classifier   ImageClassifier
	storer       ImageStorer
	recorder     Recorder
	modelVersion string
}

// NewPredictService creates a PredictService.
func NewPredictService(
	resolver TokenResolver,
	classifier ImageClassifier,
	storer ImageStorer,
	recorder Recorder,
	modelVersion string,
) *PredictService {
	if modelVersion == "" {
		modelVersion = models.DefaultModelVersion
	}
	return &PredictService{
		resolver:     resolver,
		classifier:   classifier,
		storer:       storer,
		recorder:     recorder,
		modelVersion: modelVersion,
	}
}

// HandlePredictRequest authenticates the caller and classifies, stores and
// records the uploaded image. The stages run strictly in that order and the
// first failure stops the pipeline.
func (s *PredictService) HandlePredictRequest(
	ctx context.Context,
	token string,
	data []byte,
	contentType string,
	filename string,
) (*models.PredictionDB, error) {
	userID, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Predict(ctx, userID, data, contentType, filename)
}

// Authenticate is the first pipeline stage. Transports call it before reading
// the upload so an unauthenticated caller never gets its input validated.
func (s *PredictService) Authenticate(ctx context.Context, token string) (int64, error) {
	return s.resolver.Resolve(ctx, token)
}

// Predict runs the stages after authentication for userID.
//
// The stages ignore cancellation of ctx so that a stored image is never left
// without its record because the client went away.
func (s *PredictService) Predict(
	ctx context.Context,
	userID int64,
	data []byte,
	contentType string,
	filename string,
) (*models.PredictionDB, error) {
	ctx = context.WithoutCancel(ctx)

	if !IsImageContentType(contentType) {
		logger.Log.Infow("rejected upload", "user_id", userID, "content_type", contentType)
		return nil, fmt.Errorf("%w: content type %q is not an image", ErrInvalidInput, contentType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	label, confidence, err := s.classifier.Classify(ctx, data)
	if err != nil {
		if errors.Is(err, classifier.ErrInvalidImage) {
			logger.Log.Infow("undecodable image", "user_id", userID, "filename", filename, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, ErrInvalidImage)
		}
		logger.Log.Errorw("classification failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	imageURL, err := s.storer.Store(ctx, data, label, ExtensionFromFilename(filename), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	record, err := s.recorder.Record(ctx, userID, imageURL, label, confidence, s.modelVersion)
	if err != nil {
		logger.Log.Errorw("stored image has no record", "image_url", imageURL, "user_id", userID)
		return nil, fmt.Errorf("%w: %w", ErrPredictionNotSaved, err)
	}

	logger.Log.Infow("prediction recorded",
		"prediction_id", record.ID,
		"user_id", userID,
		"label", label,
		"confidence", confidence,
	)
	return record, nil
}
