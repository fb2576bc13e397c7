package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/hongminglow/carrot/internal/storage"
)

// Repository is a generic soft-delete aware table accessor.
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository binds a repository for T to the store.
func NewRepository[T any](s *Store) *Repository[T] {
	return &Repository[T]{db: s.db}
}

var _ storage.Repository[struct{}] = (*Repository[struct{}])(nil)

// List returns rows whose soft-delete flag is false, ordered by id.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the row with the given id whether or not it is soft-deleted.
func (r *Repository[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		var zero T
		return zero, convertNotFoundError(err)
	}
	return out, nil
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return convertWriteError(r.db.WithContext(ctx).Create(entity).Error)
}

// Save writes every column of an existing row.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	return convertWriteError(r.db.WithContext(ctx).Save(entity).Error)
}
