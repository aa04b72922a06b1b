package ports

import (
	"context"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// PasswordHasher hashes and verifies secrets. Verify returns false on a
// mismatch and an InvalidArgument error only for unusable inputs.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) (bool, error)
}

// TokenIssuer signs identity tokens bound to a user.
type TokenIssuer interface {
	Issue(subject string, role domain.Role) (string, error)
}

// TokenVerifier decodes tokens produced by a TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	User  *domain.User
	Token string
}

// AuthService is the Identity Authority.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
