package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

func (s *Store) users(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Roles", func(db *gorm.DB) *gorm.DB {
		return db.Order("roles.id")
	})
}

// CreateUser inserts the user and its role assignments. Roles must already exist.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return convertWriteError(s.db.WithContext(ctx).Omit("Roles.*").Create(user).Error)
}

// UpdateUser persists scalar fields; role assignments are left untouched.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return convertWriteError(s.db.WithContext(ctx).Omit("Roles").Save(user).Error)
}

// FindByID returns the user with roles, including soft-deleted users.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	if err := s.users(ctx).First(&user, id).Error; err != nil {
		return models.User{}, convertNotFoundError(err)
	}
	return user, nil
}

// FindByUsernameOrEmail returns the first user whose username or email equals identifier.
func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	var user models.User
	err := s.users(ctx).
		Where("user_name = ? OR email = ?", identifier, identifier).
		Order("id").
		First(&user).Error
	if err != nil {
		return models.User{}, convertNotFoundError(err)
	}
	return user, nil
}

// ExistsByUsername counts deleted rows too since the unique index does.
func (s *Store) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "user_name = ?", username)
}

// ExistsByEmail counts deleted rows too since the unique index does.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = ?", email)
}

func (s *Store) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns users that are not soft-deleted.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.users(ctx).Where("is_deleted = ?", false).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindRoleByName looks a role up by its unique name.
func (s *Store) FindRoleByName(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("role_name = ?", name).First(&role).Error; err != nil {
		return models.Role{}, convertNotFoundError(err)
	}
	return role, nil
}
