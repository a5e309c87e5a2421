package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=services

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.UserDB, error)
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, name, email, hashedPassword string) (*models.UserDB, error)
}

// Credentials hashes and checks passwords and issues tokens.
type Credentials interface {
	Hash(password string) (string, error)
	Verify(plaintext, hash string) bool
	IssueToken(ctx context.Context, userID int64) (string, error)
}

// AuthService handles registration, login and user lookup.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	credentials Credentials
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, credentials Credentials) *AuthService {
	return &AuthService{
		reader:      reader,
		writer:      writer,
		credentials: credentials,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password.
func (svc *AuthService) Register(ctx context.Context, name, email, password string) (*models.UserDB, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case password == "":
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if existing != nil {
		logger.Log.Infow("email already registered", "email", email)
		return nil, ErrConflict
	}

	hash, err := svc.credentials.Hash(password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Save(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			logger.Log.Infow("email registered concurrently", "email", email)
			return nil, ErrConflict
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	logger.Log.Infow("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the password and returns a session token.
// An unknown email and a wrong password are the same ErrInvalidCredentials.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if user == nil || !svc.credentials.Verify(password, user.HashedPassword) {
		logger.Log.Infow("invalid credentials", "email", email)
		return "", ErrInvalidCredentials
	}

	return svc.credentials.IssueToken(ctx, user.ID)
}

// GetUser returns the user with id or ErrNotFound.
func (svc *AuthService) GetUser(ctx context.Context, id int64) (*models.UserDB, error) {
	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", id, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return user, nil
}
