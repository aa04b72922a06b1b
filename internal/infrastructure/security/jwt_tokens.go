package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

var (
	_ ports.TokenIssuer   = (*JWTTokens)(nil)
	_ ports.TokenVerifier = (*JWTTokens)(nil)
)

type tokenClaims struct {
	Role domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTTokens issues and verifies HS256 tokens with a fixed secret and TTL.
type JWTTokens struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokens returns a token service. A non-positive ttl falls back to 24h.
func NewJWTTokens(secret string, ttl time.Duration) *JWTTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTTokens{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (t *JWTTokens) WithClock(now func() time.Time) *JWTTokens {
	t.now = now
	return t
}

// Issue signs a token for subject valid for the configured TTL.
func (t *JWTTokens) Issue(subject string, role domain.Role) (string, error) {
	return IssueToken(subject, role, t.secret, t.ttl, t.now())
}

// Verify checks signature and expiry and returns the claims.
func (t *JWTTokens) Verify(token string) (*domain.Claims, error) {
	return VerifyToken(token, t.secret, t.now())
}

// IssueToken signs {sub, role, iat, exp} with secret.
func IssueToken(subject string, role domain.Role, secret string, ttl time.Duration, now time.Time) (string, error) {
	if subject == "" {
		return "", domain.InvalidArgument("token subject must be provided")
	}
	if secret == "" {
		return "", domain.InvalidArgument("token secret must be provided")
	}
	if ttl <= 0 {
		return "", domain.InvalidArgument("token ttl must be positive")
	}

	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken parses token and returns its claims as of now. Every failure
// is a domain.ErrInvalidToken whose details name the reason.
func VerifyToken(token, secret string, now time.Time) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.InvalidToken("token is missing", nil)
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, domain.InvalidToken(reason(err), err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, domain.InvalidToken("token has no subject", nil)
	}

	out := &domain.Claims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token signature mismatch"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	default:
		return "token is invalid"
	}
}
