// Package sqlite is the single-file storage backend used for local and
// offline demo runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/storage"
	"github.com/hongminglow/campus-connect/internal/storage/migrations"
)

var _ storage.Store = (*Store)(nil)

// Store provides SQLite-backed persistence.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-migrated database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the database file named by dsn and runs migrations. A
// "sqlite:" prefix is stripped so DATABASE_URL values can be passed as-is.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY and keeps
	// in-memory databases alive for the lifetime of the handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	if _, err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func normalizeDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	return dsn
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Ping checks the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const insert = `INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4)`
	res, err := s.db.ExecContext(ctx, insert, user.Name, user.Email, user.PasswordHash, string(user.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	// RETURNING columns carry no declared type, so the timestamp is read back
	// through the table to get time.Time conversion.
	if err := s.db.QueryRowContext(ctx, `SELECT created_at FROM users WHERE id = $1`, user.ID).Scan(&user.CreatedAt); err != nil {
		return models.User{}, fmt.Errorf("read user timestamp: %w", err)
	}
	return user, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`
	var user models.User
	var role string
	err := s.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	user.Role = models.Role(role)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
