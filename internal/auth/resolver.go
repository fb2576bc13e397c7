package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/storage"
)

// ErrPrincipalNotFound means no live user matches the lookup.
var ErrPrincipalNotFound = errors.New("principal not found")

// UserLookup is the read side of the credential store used for resolution.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
}

// Resolver turns user ids and login identifiers into principals.
type Resolver struct {
	users UserLookup
}

func NewResolver(users UserLookup) *Resolver {
	return &Resolver{users: users}
}

// ResolveByID is used by the request authenticator after token validation.
func (r *Resolver) ResolveByID(ctx context.Context, id int64) (Principal, error) {
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		return Principal{}, lookupError(err)
	}
	return NewPrincipal(user)
}

// ResolveByLoginOrEmail matches identifier against either the username or the email.
func (r *Resolver) ResolveByLoginOrEmail(ctx context.Context, identifier string) (Principal, error) {
	user, err := r.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return Principal{}, lookupError(err)
	}
	return NewPrincipal(user)
}

func lookupError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPrincipalNotFound
	}
	return fmt.Errorf("load user: %w", err)
}
