package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/jwt"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=credentials.go -destination=mock_credentials.go -package=services

// TokenCodec issues and parses session tokens.
type TokenCodec interface {
	Generate(ctx context.Context, userID int64) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// UserGetter looks users up by id.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.UserDB, error)
}

// tokenFailureErrors decides what each token rejection reports to callers.
// All of them collapse to ErrUnauthenticated so a caller cannot tell an
// expired token from a forged one or from a deleted user.
var tokenFailureErrors = map[jwt.Failure]error{
	jwt.FailureMalformed: ErrUnauthenticated,
	jwt.FailureSignature: ErrUnauthenticated,
	jwt.FailureExpired:   ErrUnauthenticated,
	jwt.FailureSubject:   ErrUnauthenticated,
}

// CredentialVerifier hashes passwords and issues and resolves session tokens.
type CredentialVerifier struct {
	tokens TokenCodec
	users  UserGetter
	cost   int
}

// NewCredentialVerifier creates a verifier. A cost of 0 uses bcrypt.DefaultCost.
func NewCredentialVerifier(tokens TokenCodec, users UserGetter, cost int) *CredentialVerifier {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &CredentialVerifier{
		tokens: tokens,
		users:  users,
		cost:   cost,
	}
}

// Hash returns a salted bcrypt hash of password.
func (v *CredentialVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash never matches.
func (v *CredentialVerifier) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IssueToken returns a signed token for userID.
func (v *CredentialVerifier) IssueToken(ctx context.Context, userID int64) (string, error) {
	token, err := v.tokens.Generate(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "user_id", userID, "error", err)
		return "", err
	}
	return token, nil
}

// Resolve returns the id of the existing user the token was issued to.
// Every token problem and an unknown subject yield ErrUnauthenticated.
func (v *CredentialVerifier) Resolve(ctx context.Context, token string) (int64, error) {
	claims, err := v.tokens.GetClaims(ctx, token)
	if err != nil {
		var tokenErr *jwt.TokenError
		if errors.As(err, &tokenErr) {
			logger.Log.Infow("token rejected", "reason", tokenErr.Failure.String())
			if mapped, ok := tokenFailureErrors[tokenErr.Failure]; ok {
				return 0, mapped
			}
		}
		return 0, ErrUnauthenticated
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		logger.Log.Errorw("failed to load token subject", "user_id", claims.UserID, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if user == nil {
		logger.Log.Infow("token rejected", "reason", "unknown_subject")
		return 0, ErrUnauthenticated
	}

	return user.ID, nil
}
