package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// CandidateRecord represents a candidate row
type CandidateRecord struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ResumeText string    `json:"resume_text,omitempty"`
	JobID      int64     `json:"job_id"`
	CompanyID  int64     `json:"company_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// CandidateStorage handles storage of candidate records
type CandidateStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewCandidateStorage creates a new SQLite candidate storage
func NewCandidateStorage(db *DB, log *logger.Logger) *CandidateStorage {
	storage := &CandidateStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-candidates"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize candidate storage", Error(err))
	}

	return storage
}

func (s *CandidateStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS candidates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			resume_text TEXT,
			job_id INTEGER NOT NULL,
			company_id INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create candidates table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_candidates_job ON candidates(job_id)`)
	if err != nil {
		return fmt.Errorf("failed to create job index: %w", err)
	}

	return nil
}

// Create inserts a new candidate row and returns its id
func (s *CandidateStorage) Create(rec *CandidateRecord) (int64, error) {
	rec.CreatedAt = time.Now().UTC()

	result, err := s.db.Exec(
		`INSERT INTO candidates (name, email, resume_text, job_id, company_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.ResumeText, rec.JobID, rec.CompanyID,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert candidate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// Get returns the candidate with the given id, or ErrNotFound
func (s *CandidateStorage) Get(id int64) (*CandidateRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, resume_text, job_id, company_id, created_at
		FROM candidates WHERE id = ?`, id)

	rec, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}
	return rec, nil
}

// GetByEmail returns the candidate with the given email, or ErrNotFound
func (s *CandidateStorage) GetByEmail(email string) (*CandidateRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, resume_text, job_id, company_id, created_at
		FROM candidates WHERE email = ?`, email)

	rec, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}
	return rec, nil
}

// ListByJob returns all candidates attached to the given job
func (s *CandidateStorage) ListByJob(jobID int64) ([]*CandidateRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, resume_text, job_id, company_id, created_at
		FROM candidates WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	records := make([]*CandidateRecord, 0)
	for rows.Next() {
		rec, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return records, nil
}

// ListAll returns every candidate
func (s *CandidateStorage) ListAll() ([]*CandidateRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, resume_text, job_id, company_id, created_at
		FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	records := make([]*CandidateRecord, 0)
	for rows.Next() {
		rec, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return records, nil
}

// Update overwrites the mutable fields of a candidate
func (s *CandidateStorage) Update(rec *CandidateRecord) error {
	result, err := s.db.Exec(
		`UPDATE candidates SET name = ?, email = ?, job_id = ?, company_id = ? WHERE id = ?`,
		rec.Name, rec.Email, rec.JobID, rec.CompanyID, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return checkAffected(result)
}

// UpdateResumeText stores the extracted resume text for a candidate
func (s *CandidateStorage) UpdateResumeText(id int64, text string) error {
	result, err := s.db.Exec(
		`UPDATE candidates SET resume_text = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("failed to update resume text: %w", err)
	}
	return checkAffected(result)
}

// Delete removes the candidate with the given id
func (s *CandidateStorage) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return checkAffected(result)
}

func scanCandidate(row scanner) (*CandidateRecord, error) {
	var rec CandidateRecord
	var resumeText sql.NullString
	var createdAt string

	err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &resumeText, &rec.JobID, &rec.CompanyID, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.ResumeText = resumeText.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// checkAffected maps a zero-row update/delete to ErrNotFound
func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
