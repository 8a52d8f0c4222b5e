package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// ContextRecord represents one embedded document in the RAG context table.
// The embedding is stored as a JSON-encoded array of float32.
type ContextRecord struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"` // "job", "candidate" or "interview"
	SourceID  int64     `json:"source_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ContextStorage handles storage of embedded RAG context rows
type ContextStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewContextStorage creates a new SQLite context storage
func NewContextStorage(db *DB, log *logger.Logger) *ContextStorage {
	storage := &ContextStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-context"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize context storage", Error(err))
	}

	return storage
}

func (s *ContextStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS ai_context (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			source_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create ai_context table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_ai_context_source ON ai_context(source, source_id)`)
	if err != nil {
		return fmt.Errorf("failed to create context source index: %w", err)
	}

	return nil
}

// Replace removes any existing row for (source, source_id) and inserts the
// given record, so repeated syncs do not accumulate stale copies
func (s *ContextStorage) Replace(rec *ContextRecord) (int64, error) {
	rec.CreatedAt = time.Now().UTC()

	embedding, err := json.Marshal(rec.Embedding)
	if err != nil {
		return 0, fmt.Errorf("failed to encode embedding: %w", err)
	}

	if _, err := s.db.Exec(
		`DELETE FROM ai_context WHERE source = ? AND source_id = ?`,
		rec.Source, rec.SourceID); err != nil {
		return 0, fmt.Errorf("failed to delete stale context row: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO ai_context (source, source_id, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Source, rec.SourceID, rec.Content, string(embedding),
		rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert context row: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// ListAll returns every context row with its embedding decoded
func (s *ContextStorage) ListAll() ([]*ContextRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, source, source_id, content, embedding, created_at FROM ai_context ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query context rows: %w", err)
	}
	defer rows.Close()

	records := make([]*ContextRecord, 0)
	for rows.Next() {
		var rec ContextRecord
		var embedding, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.SourceID, &rec.Content, &embedding, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan context row: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate context rows: %w", err)
	}

	return records, nil
}
