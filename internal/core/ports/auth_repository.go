package ports

import (
	"context"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// UserRepository is the Credential Store. Lookups that miss return an error
// matching domain.ErrRecordNotFound; Create returns one matching
// domain.ErrEmailAlreadyTaken when the email is already stored.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
