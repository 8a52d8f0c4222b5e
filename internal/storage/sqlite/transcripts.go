package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// TranscriptRecord represents one transcript entry of an interview
type TranscriptRecord struct {
	ID          int64     `json:"id"`
	InterviewID int64     `json:"interview_id"`
	Speaker     string    `json:"speaker"` // "interviewer" or "candidate"
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// TranscriptStorage handles storage of interview transcripts
type TranscriptStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewTranscriptStorage creates a new SQLite transcript storage
func NewTranscriptStorage(db *DB, log *logger.Logger) *TranscriptStorage {
	storage := &TranscriptStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-transcripts"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize transcript storage", Error(err))
	}

	return storage
}

func (s *TranscriptStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			interview_id INTEGER NOT NULL,
			speaker TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create transcripts table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_transcripts_interview ON transcripts(interview_id)`)
	if err != nil {
		return fmt.Errorf("failed to create transcript interview index: %w", err)
	}

	return nil
}

// Append stores one transcript entry
func (s *TranscriptStorage) Append(rec *TranscriptRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.Exec(
		`INSERT INTO transcripts (interview_id, speaker, content, created_at) VALUES (?, ?, ?, ?)`,
		rec.InterviewID, rec.Speaker, rec.Content, rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert transcript entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// GetByInterview returns the transcript entries of an interview in order
func (s *TranscriptStorage) GetByInterview(interviewID int64) ([]*TranscriptRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, interview_id, speaker, content, created_at
		FROM transcripts WHERE interview_id = ? ORDER BY id`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	defer rows.Close()

	records := make([]*TranscriptRecord, 0)
	for rows.Next() {
		var rec TranscriptRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.InterviewID, &rec.Speaker, &rec.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript entry: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcripts: %w", err)
	}

	return records, nil
}
