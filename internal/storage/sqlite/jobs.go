package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Job status values
const (
	JobStatusPending = "pending"
	JobStatusFilled  = "filled"
)

// JobRecord represents a job posting row
type JobRecord struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobSkillRecord represents a required skill attached to a job
type JobSkillRecord struct {
	JobID int64  `json:"job_id"`
	Skill string `json:"skill"`
}

// JobStorage handles storage of jobs and their required skills
type JobStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewJobStorage creates a new SQLite job storage
func NewJobStorage(db *DB, log *logger.Logger) *JobStorage {
	storage := &JobStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-jobs"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize job storage", Error(err))
	}

	return storage
}

func (s *JobStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS job_skills (
			job_id INTEGER NOT NULL,
			skill TEXT NOT NULL,
			UNIQUE(job_id, skill)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create job_skills table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company_id)`)
	if err != nil {
		return fmt.Errorf("failed to create company index: %w", err)
	}

	return nil
}

// Create inserts a new job row and returns its id
func (s *JobStorage) Create(rec *JobRecord) (int64, error) {
	rec.CreatedAt = time.Now().UTC()
	if rec.Status == "" {
		rec.Status = JobStatusPending
	}

	result, err := s.db.Exec(
		`INSERT INTO jobs (company_id, title, description, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.CompanyID, rec.Title, rec.Description, rec.Status,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// Get returns the job with the given id, or ErrNotFound
func (s *JobStorage) Get(id int64) (*JobRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, company_id, title, description, status, created_at FROM jobs WHERE id = ?`, id)

	rec, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	return rec, nil
}

// ListByCompany returns all jobs posted by the given company
func (s *JobStorage) ListByCompany(companyID int64) ([]*JobRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, company_id, title, description, status, created_at
		FROM jobs WHERE company_id = ? ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	records := make([]*JobRecord, 0)
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return records, nil
}

// ListAll returns every job row
func (s *JobStorage) ListAll() ([]*JobRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, company_id, title, description, status, created_at FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	records := make([]*JobRecord, 0)
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return records, nil
}

// Update overwrites the mutable fields of a job
func (s *JobStorage) Update(rec *JobRecord) error {
	result, err := s.db.Exec(
		`UPDATE jobs SET title = ?, description = ?, status = ? WHERE id = ?`,
		rec.Title, rec.Description, rec.Status, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return checkAffected(result)
}

// UpdateStatus sets the status of a job. Status must be pending or filled.
func (s *JobStorage) UpdateStatus(id int64, status string) error {
	if status != JobStatusPending && status != JobStatusFilled {
		return fmt.Errorf("invalid job status: %s", status)
	}

	result, err := s.db.Exec(`UPDATE jobs SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return checkAffected(result)
}

// Delete removes the job and its skills
func (s *JobStorage) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM job_skills WHERE job_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job skills: %w", err)
	}

	result, err := s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return checkAffected(result)
}

// AddSkills attaches the given skills to a job, ignoring duplicates
func (s *JobStorage) AddSkills(jobID int64, skills []string) error {
	for _, skill := range skills {
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO job_skills (job_id, skill) VALUES (?, ?)`, jobID, skill)
		if err != nil {
			return fmt.Errorf("failed to insert job skill: %w", err)
		}
	}
	return nil
}

// DeleteSkill removes one skill from a job
func (s *JobStorage) DeleteSkill(jobID int64, skill string) error {
	result, err := s.db.Exec(
		`DELETE FROM job_skills WHERE job_id = ? AND skill = ?`, jobID, skill)
	if err != nil {
		return fmt.Errorf("failed to delete job skill: %w", err)
	}
	return checkAffected(result)
}

// DeleteSkills removes every skill attached to a job
func (s *JobStorage) DeleteSkills(jobID int64) error {
	if _, err := s.db.Exec(`DELETE FROM job_skills WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("failed to delete job skills: %w", err)
	}
	return nil
}

// GetSkills returns the skills attached to a job
func (s *JobStorage) GetSkills(jobID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT skill FROM job_skills WHERE job_id = ? ORDER BY skill`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job skills: %w", err)
	}
	defer rows.Close()

	skills := make([]string, 0)
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, fmt.Errorf("failed to scan job skill: %w", err)
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job skills: %w", err)
	}

	return skills, nil
}

func scanJob(row scanner) (*JobRecord, error) {
	var rec JobRecord
	var description sql.NullString
	var createdAt string

	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.Title, &description, &rec.Status, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.Description = description.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}
