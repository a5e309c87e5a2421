package services

import (
	"errors"
	"fmt"
)

// Error kinds reported by the services. Callers match them with errors.Is.
var (
	ErrUnauthenticated      = errors.New("could not validate credentials")
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidImage         = errors.New("invalid image")
	ErrClassificationFailed = errors.New("classification failed")
	ErrStorageUnavailable   = errors.New("image storage unavailable")
	ErrPersistenceFailed    = errors.New("persistence failed")
	ErrConflict             = errors.New("email already registered")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
)

// Kinds narrowed by subject. Each matches its parent kind.
var (
	ErrPredictionNotSaved = fmt.Errorf("prediction %w", ErrPersistenceFailed)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrPredictionNotFound = fmt.Errorf("prediction %w", ErrNotFound)
)
