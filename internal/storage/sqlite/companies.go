package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// CompanyRecord represents a company row. PasswordHash is never serialized.
type CompanyRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CompanyStorage handles storage of company records
type CompanyStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewCompanyStorage creates a new SQLite company storage
func NewCompanyStorage(db *DB, log *logger.Logger) *CompanyStorage {
	storage := &CompanyStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-companies"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize company storage", Error(err))
	}

	return storage
}

func (s *CompanyStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			industry TEXT,
			email TEXT NOT NULL,
			password_hash TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create companies table: %w", err)
	}
	return nil
}

// Create inserts a new company row and returns its id
func (s *CompanyStorage) Create(rec *CompanyRecord) (int64, error) {
	rec.CreatedAt = time.Now().UTC()

	result, err := s.db.Exec(
		`INSERT INTO companies (name, industry, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Name, rec.Industry, rec.Email, rec.PasswordHash,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert company: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// Get returns the company with the given id, or ErrNotFound
func (s *CompanyStorage) Get(id int64) (*CompanyRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, name, industry, email, password_hash, created_at
		FROM companies WHERE id = ?`, id)

	var rec CompanyRecord
	var industry, passwordHash sql.NullString
	var createdAt string
	err := row.Scan(&rec.ID, &rec.Name, &industry, &rec.Email, &passwordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query company: %w", err)
	}

	rec.Industry = industry.String
	rec.PasswordHash = passwordHash.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// Update overwrites the mutable fields of a company
func (s *CompanyStorage) Update(rec *CompanyRecord) error {
	result, err := s.db.Exec(
		`UPDATE companies SET name = ?, industry = ?, email = ? WHERE id = ?`,
		rec.Name, rec.Industry, rec.Email, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return checkAffected(result)
}

// Delete removes the company with the given id
func (s *CompanyStorage) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return checkAffected(result)
}
