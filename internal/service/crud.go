// Package service holds the soft-delete aware CRUD logic shared by every resource.
package service

import (
	"context"
	"time"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/storage"
)

// EntityPtr constrains PT to a pointer to T that carries an id and audit block.
type EntityPtr[T any] interface {
	*T
	models.Entity
}

// CRUD stamps audit metadata from the acting principal and delegates to a repository.
type CRUD[T any, PT EntityPtr[T]] struct {
	repo storage.Repository[T]
	now  func() time.Time
}

func NewCRUD[T any, PT EntityPtr[T]](repo storage.Repository[T]) *CRUD[T, PT] {
	return &CRUD[T, PT]{repo: repo, now: time.Now}
}

// List returns every record that is not soft-deleted.
func (s *CRUD[T, PT]) List(ctx context.Context) ([]T, error) {
	return s.repo.List(ctx)
}

// Get returns a record by id, including soft-deleted ones.
func (s *CRUD[T, PT]) Get(ctx context.Context, id int64) (T, error) {
	return s.repo.Get(ctx, id)
}

// Create persists entity as a new record. Any client-supplied id is ignored.
func (s *CRUD[T, PT]) Create(ctx context.Context, entity T) (T, error) {
	p := PT(&entity)
	p.SetID(0)
	p.AuditInfo().StampCreate(auth.ActorID(ctx), s.now())
	if err := s.repo.Create(ctx, &entity); err != nil {
		var zero T
		return zero, err
	}
	return entity, nil
}

// Update replaces the fields of record id with entity. Creation metadata and
// the soft-delete flag are kept from the stored record.
func (s *CRUD[T, PT]) Update(ctx context.Context, id int64, entity T) (T, error) {
	var zero T
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	p := PT(&entity)
	p.SetID(id)
	*p.AuditInfo() = *PT(&existing).AuditInfo()
	p.AuditInfo().StampUpdate(auth.ActorID(ctx), s.now())

	if err := s.repo.Save(ctx, &entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Delete marks record id as deleted. The row stays retrievable by id.
func (s *CRUD[T, PT]) Delete(ctx context.Context, id int64) (T, error) {
	var zero T
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	PT(&existing).AuditInfo().MarkDeleted(auth.ActorID(ctx), s.now())
	if err := s.repo.Save(ctx, &existing); err != nil {
		return zero, err
	}
	return existing, nil
}
