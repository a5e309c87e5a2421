package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Failure enumerates the reasons a token can be rejected.
type Failure int

const (
	FailureMalformed Failure = iota + 1 // not a parseable JWT or missing required claims
	FailureSignature                    // wrong key or unexpected signing method
	FailureExpired                      // exp is at or before the current time
	FailureSubject                      // sub is missing or not a positive integer
)

// Failures lists every Failure value.
var Failures = []Failure{FailureMalformed, FailureSignature, FailureExpired, FailureSubject}

func (f Failure) String() string {
	switch f {
	case FailureMalformed:
		return "malformed"
	case FailureSignature:
		return "invalid_signature"
	case FailureExpired:
		return "expired"
	case FailureSubject:
		return "invalid_subject"
	default:
		return "unknown"
	}
}

// TokenError is returned by GetClaims and Validate for every rejected token.
type TokenError struct {
	Failure Failure
	Err     error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token rejected: " + e.Failure.String()
	}
	return fmt.Sprintf("token rejected: %s: %v", e.Failure, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// Claims holds the application data carried by a session token.
type Claims struct {
	UserID    int64
	ExpiresAt time.Time
}

// JWT issues and parses HS256 session tokens.
type JWT struct {
	secretKey []byte
	exp       time.Duration
	issuer    string
	now       func() time.Time
}

// Opt configures a JWT.
type Opt func(*JWT)

// WithSecretKey sets the HMAC signing key.
func WithSecretKey(key string) Opt {
	return func(j *JWT) {
		j.secretKey = []byte(key)
	}
}

// WithExpiration sets the lifetime of issued tokens.
func WithExpiration(exp time.Duration) Opt {
	return func(j *JWT) {
		j.exp = exp
	}
}

// WithIssuer sets the iss claim of issued tokens.
func WithIssuer(issuer string) Opt {
	return func(j *JWT) {
		j.issuer = issuer
	}
}

// WithClock overrides the time source used for iat, exp and validation.
func WithClock(now func() time.Time) Opt {
	return func(j *JWT) {
		j.now = now
	}
}

// New creates a JWT with a one hour lifetime unless overridden.
func New(opts ...Opt) *JWT {
	j := &JWT{
		exp: time.Hour,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Generate creates a signed token whose subject is userID.
func (j *JWT) Generate(ctx context.Context, userID int64) (string, error) {
	now := j.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.exp)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// GetClaims verifies the token and returns its claims.
// Every rejection is a *TokenError.
func (j *JWT) GetClaims(ctx context.Context, tokenString string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &rc,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: unexpected signing method %v", jwt.ErrTokenSignatureInvalid, token.Header["alg"])
			}
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, &TokenError{Failure: classify(err), Err: err}
	}

	userID, err := strconv.ParseInt(rc.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, &TokenError{Failure: FailureSubject, Err: fmt.Errorf("subject %q", rc.Subject)}
	}

	return &Claims{UserID: userID, ExpiresAt: rc.ExpiresAt.Time}, nil
}

// Validate reports whether the token would be accepted by GetClaims.
func (j *JWT) Validate(ctx context.Context, tokenString string) error {
	_, err := j.GetClaims(ctx, tokenString)
	return err
}

func classify(err error) Failure {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return FailureExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return FailureSignature
	default:
		return FailureMalformed
	}
}

// GetTokenFromRequest extracts the bearer token from the Authorization header.
func GetTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
