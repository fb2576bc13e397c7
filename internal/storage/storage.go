package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/carrot/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore is the credential store consumed by the auth pipeline and user handlers.
// Lookups return soft-deleted rows too; callers decide whether those count.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	FindRoleByName(ctx context.Context, name string) (models.Role, error)
}

// Repository is the soft-delete aware persistence contract shared by every
// CRUD resource. List excludes deleted rows, Get does not.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
}
