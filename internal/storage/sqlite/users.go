package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// UserRecord represents a login account created by the invite flow
type UserRecord struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role"`
	MustResetPassword bool      `json:"must_reset_password"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserStorage handles storage of user accounts
type UserStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewUserStorage creates a new SQLite user storage
func NewUserStorage(db *DB, log *logger.Logger) *UserStorage {
	storage := &UserStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-users"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize user storage", Error(err))
	}

	return storage
}

func (s *UserStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'candidate',
			must_reset_password INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// Create inserts a new user row and returns its id
func (s *UserStorage) Create(rec *UserRecord) (int64, error) {
	rec.CreatedAt = time.Now().UTC()
	if rec.Role == "" {
		rec.Role = "candidate"
	}

	result, err := s.db.Exec(
		`INSERT INTO users (name, email, password_hash, role, must_reset_password, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.PasswordHash, rec.Role, rec.MustResetPassword,
		rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// GetByEmail returns the user with the given email, or ErrNotFound
func (s *UserStorage) GetByEmail(email string) (*UserRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, password_hash, role, must_reset_password, created_at
		FROM users WHERE email = ?`, email)

	var rec UserRecord
	var createdAt string
	err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.PasswordHash, &rec.Role,
		&rec.MustResetPassword, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// UpdatePassword replaces a user's password hash and reset flag
func (s *UserStorage) UpdatePassword(id int64, passwordHash string, mustReset bool) error {
	result, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, must_reset_password = ? WHERE id = ?`,
		passwordHash, mustReset, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(result)
}
