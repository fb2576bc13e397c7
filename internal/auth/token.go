package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/metrics"
)

// RejectReason classifies why a token was refused. All reasons surface as
// 401 to clients but stay distinct in logs and metrics.
type RejectReason string

const (
	RejectMalformed    RejectReason = "malformed"
	RejectBadSignature RejectReason = "bad_signature"
	RejectExpired      RejectReason = "expired"
	RejectUnsupported  RejectReason = "unsupported"
)

// TokenError is returned by Validate for every rejected token.
type TokenError struct {
	Reason RejectReason
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Reason, e.Err)
	}
	return "token " + string(e.Reason)
}

func (e *TokenError) Unwrap() error { return e.Err }

// ReasonOf extracts the rejection reason from err, if it is a *TokenError.
func ReasonOf(err error) (RejectReason, bool) {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Reason, true
	}
	return "", false
}

var signingMethod = jwt.SigningMethodHS512

// TokenManager issues and validates HS512-signed JWTs whose subject is a user id.
type TokenManager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenManager) { t.now = now }
}

// WithTokenMetrics counts rejections by reason.
func WithTokenMetrics(m *metrics.Metrics) TokenOption {
	return func(t *TokenManager) { t.metrics = m }
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration, opts ...TokenOption) *TokenManager {
	t := &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TTL returns the configured token lifetime.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Generate issues a signed token for userID, valid from now for the configured TTL.
// Timestamps have one second resolution.
func (t *TokenManager) Generate(userID int64) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// GenerateFor issues a token for an already resolved principal.
func (t *TokenManager) GenerateFor(p Principal) (string, error) {
	return t.Generate(p.ID)
}

// Validate verifies tokenString and returns its subject user id. Every failure
// is a *TokenError. An expired token is reported as expired even when its
// signature would not verify.
func (t *TokenManager) Validate(tokenString string) (int64, error) {
	id, err := t.validate(tokenString)
	if err != nil {
		reason, _ := ReasonOf(err)
		logger.Warn("jwt rejected", "reason", reason, "error", err)
		t.metrics.TokenRejected(string(reason))
		return 0, err
	}
	return id, nil
}

func (t *TokenManager) validate(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, &TokenError{Reason: RejectMalformed, Err: errors.New("empty token")}
	}

	unverified := &jwt.RegisteredClaims{}
	tok, _, err := jwt.NewParser().ParseUnverified(tokenString, unverified)
	if err != nil {
		return 0, classify(err)
	}
	if tok.Method == nil || tok.Method.Alg() != signingMethod.Alg() {
		return 0, &TokenError{Reason: RejectUnsupported, Err: fmt.Errorf("signing method %v", tok.Header["alg"])}
	}
	if unverified.ExpiresAt == nil {
		return 0, &TokenError{Reason: RejectMalformed, Err: errors.New("missing exp claim")}
	}
	if !t.now().Before(unverified.ExpiresAt.Time) {
		return 0, &TokenError{Reason: RejectExpired, Err: jwt.ErrTokenExpired}
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	_, err = parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, classify(err)
	}

	if claims.Subject == "" {
		return 0, &TokenError{Reason: RejectMalformed, Err: errors.New("empty subject")}
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, &TokenError{Reason: RejectMalformed, Err: fmt.Errorf("subject %q: %w", claims.Subject, err)}
	}
	return id, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Reason: RejectExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &TokenError{Reason: RejectBadSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Reason: RejectUnsupported, Err: err}
	default:
		return &TokenError{Reason: RejectMalformed, Err: err}
	}
}
