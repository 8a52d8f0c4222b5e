package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Interview status values. Transitions only move forward:
// pending -> in_progress -> completed.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// InterviewRecord represents an interview session row
type InterviewRecord struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	CompanyID   int64     `json:"company_id"`
	JobID       int64     `json:"job_id"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	BotURL      string    `json:"bot_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InterviewStorage handles storage of interview sessions
type InterviewStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewInterviewStorage creates a new SQLite interview storage
func NewInterviewStorage(db *DB, log *logger.Logger) *InterviewStorage {
	storage := &InterviewStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-interviews"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize interview storage", Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *InterviewStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS interviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			candidate_id INTEGER NOT NULL,
			company_id INTEGER NOT NULL,
			job_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			scheduled_at TIMESTAMP,
			bot_url TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create interviews table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_interviews_candidate ON interviews(candidate_id)`)
	if err != nil {
		return fmt.Errorf("failed to create candidate index: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status)`)
	if err != nil {
		return fmt.Errorf("failed to create status index: %w", err)
	}

	return nil
}

// Create inserts a new interview row and returns its id
func (s *InterviewStorage) Create(rec *InterviewRecord) (int64, error) {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusPending
	}

	result, err := s.db.Exec(
		`INSERT INTO interviews
		(candidate_id, company_id, job_id, status, scheduled_at, bot_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CandidateID,
		rec.CompanyID,
		rec.JobID,
		rec.Status,
		rec.ScheduledAt.UTC().Format(time.RFC3339),
		rec.BotURL,
		rec.CreatedAt.Format(time.RFC3339),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert interview: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// Get returns the interview with the given id, or ErrNotFound
func (s *InterviewStorage) Get(id int64) (*InterviewRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, candidate_id, company_id, job_id, status, scheduled_at, bot_url, created_at, updated_at
		FROM interviews WHERE id = ?`, id)

	rec, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query interview: %w", err)
	}
	return rec, nil
}

// List returns all interviews, optionally filtered by candidate id
func (s *InterviewStorage) List(candidateID *int64) ([]*InterviewRecord, error) {
	query := `SELECT id, candidate_id, company_id, job_id, status, scheduled_at, bot_url, created_at, updated_at
		FROM interviews`
	args := []any{}
	if candidateID != nil {
		query += ` WHERE candidate_id = ?`
		args = append(args, *candidateID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	records := make([]*InterviewRecord, 0)
	for rows.Next() {
		rec, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}

	return records, nil
}

// UpdateStatus sets the status of the interview with the given id
func (s *InterviewStorage) UpdateStatus(id int64, status string) error {
	result, err := s.db.Exec(
		`UPDATE interviews SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update interview status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStarted sets the status and bot URL of a started interview
func (s *InterviewStorage) UpdateStarted(id int64, status, botURL string) error {
	result, err := s.db.Exec(
		`UPDATE interviews SET status = ?, bot_url = ?, updated_at = ? WHERE id = ?`,
		status, botURL, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanInterview(row scanner) (*InterviewRecord, error) {
	var rec InterviewRecord
	var scheduledAt, createdAt, updatedAt string
	var botURL sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.CandidateID,
		&rec.CompanyID,
		&rec.JobID,
		&rec.Status,
		&scheduledAt,
		&botURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.BotURL = botURL.String
	rec.ScheduledAt, _ = time.Parse(time.RFC3339, scheduledAt)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &rec, nil
}
