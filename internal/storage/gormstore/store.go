// Package gormstore implements the storage contracts with GORM over SQLite or Postgres.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hongminglow/carrot/internal/config"
	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/storage"
	"github.com/hongminglow/carrot/internal/storage/postgres"
)

// Store is the GORM-backed persistence layer.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
	pool  *postgres.Pool
	now   func() time.Time
}

// Open connects to the configured database. It does not migrate; call Migrate.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	s := &Store{now: time.Now}
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		pool, err := postgres.Open(ctx, cfg.URL, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		dialector = gormpg.New(gormpg.Config{Conn: pool.DB()})
	case "sqlite", "":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		s.closePool()
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		s.closePool()
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.Driver != "postgres" {
		// SQLite allows a single writer; in-memory databases also vanish per connection.
		sqlDB.SetMaxOpenConns(1)
	}

	s.db = db
	s.sqlDB = sqlDB
	return s, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return ":memory:?_pragma=foreign_keys(1)"
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Migrate creates or updates the schema and seeds the built-in roles.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, name := range []string{models.RoleAdmin, models.RoleStaff} {
		if err := s.ensureRole(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ensureRole(ctx context.Context, name string) error {
	var role models.Role
	err := s.db.WithContext(ctx).Where("role_name = ?", name).First(&role).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup role %s: %w", name, err)
	}
	role = models.Role{RoleName: name}
	role.StampCreate(nil, s.now())
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil && !isUniqueConstraintError(err) {
		return fmt.Errorf("seed role %s: %w", name, err)
	}
	logger.Info("seeded role", "role", name)
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	return s.sqlDB.PingContext(ctx)
}

// Close releases database resources.
func (s *Store) Close() error {
	err := s.sqlDB.Close()
	s.closePool()
	return err
}

func (s *Store) closePool() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// DB exposes the underlying handle for tests and tooling.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func convertNotFoundError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}

func convertWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %v", storage.ErrAlreadyExists, err)
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || postgres.IsUniqueViolation(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// OpenMemory opens a migrated, private in-memory SQLite store.
func OpenMemory(ctx context.Context) (*Store, error) {
	s, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
