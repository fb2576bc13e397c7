package auth

import (
	"context"

	"github.com/hongminglow/carrot/internal/models"
)

// Principal is the authenticated identity attached to a request. It never
// carries the password hash.
type Principal struct {
	ID          int64
	Name        string
	Username    string
	Email       string
	Authorities []string
}

// NewPrincipal builds a principal from a persisted user. Soft-deleted users
// have no principal.
func NewPrincipal(u models.User) (Principal, error) {
	if u.ID == 0 || u.Deleted {
		return Principal{}, ErrPrincipalNotFound
	}
	return Principal{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Email:       u.Email,
		Authorities: u.RoleNames(),
	}, nil
}

// HasAuthority reports whether the principal was granted authority.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal published for this request, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ActorID returns the id of the current principal for audit stamping, or nil
// for anonymous requests.
func ActorID(ctx context.Context) *int64 {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil
	}
	id := p.ID
	return &id
}
