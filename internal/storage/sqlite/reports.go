package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// ReportRecord represents an interview report row. List fields are stored
// as JSON arrays in TEXT columns.
type ReportRecord struct {
	ID                  int64     `json:"id"`
	InterviewID         int64     `json:"interview_id"`
	OverallScore        int       `json:"overall_score"`
	Recommendation      string    `json:"recommendation"`
	Feedback            string    `json:"feedback"`
	Sentiment           string    `json:"sentiment"`
	ConfidenceLevel     string    `json:"confidence_level"`
	KeyStrengths        []string  `json:"key_strengths"`
	AreasForImprovement []string  `json:"areas_for_improvement"`
	ResponseDepth       int       `json:"response_depth"`
	ResponseClarity     int       `json:"response_clarity"`
	ResponseRelevance   int       `json:"response_relevance"`
	CreatedAt           time.Time `json:"created_at"`
}

// SkillScoreRecord represents one scored skill for an interview
type SkillScoreRecord struct {
	ID          int64  `json:"id"`
	InterviewID int64  `json:"interview_id"`
	Skill       string `json:"skill"`
	Score       int    `json:"score"`
	Evidence    string `json:"evidence,omitempty"`
}

// ReportStorage handles storage of interview reports and skill scores
type ReportStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewReportStorage creates a new SQLite report storage
func NewReportStorage(db *DB, log *logger.Logger) *ReportStorage {
	storage := &ReportStorage{
		db:     db.GetDB(),
		logger: log.Named("sqlite-reports"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize report storage", Error(err))
	}

	return storage
}

func (s *ReportStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			interview_id INTEGER NOT NULL,
			overall_score INTEGER NOT NULL,
			recommendation TEXT,
			feedback TEXT,
			sentiment TEXT,
			confidence_level TEXT,
			key_strengths TEXT,
			areas_for_improvement TEXT,
			response_depth INTEGER,
			response_clarity INTEGER,
			response_relevance INTEGER,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_interview ON reports(interview_id)`)
	if err != nil {
		return fmt.Errorf("failed to create report interview index: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS skill_scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			interview_id INTEGER NOT NULL,
			skill TEXT NOT NULL,
			score INTEGER NOT NULL,
			evidence TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create skill_scores table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_skill_scores_interview ON skill_scores(interview_id)`)
	if err != nil {
		return fmt.Errorf("failed to create skill score interview index: %w", err)
	}

	return nil
}

// CreateReport inserts a report row and returns its id
func (s *ReportStorage) CreateReport(rec *ReportRecord) (int64, error) {
	rec.CreatedAt = time.Now().UTC()

	strengths, err := json.Marshal(rec.KeyStrengths)
	if err != nil {
		return 0, fmt.Errorf("failed to encode key strengths: %w", err)
	}
	areas, err := json.Marshal(rec.AreasForImprovement)
	if err != nil {
		return 0, fmt.Errorf("failed to encode improvement areas: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO reports
		(interview_id, overall_score, recommendation, feedback, sentiment, confidence_level,
		key_strengths, areas_for_improvement, response_depth, response_clarity, response_relevance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.InterviewID, rec.OverallScore, rec.Recommendation, rec.Feedback,
		rec.Sentiment, rec.ConfidenceLevel, string(strengths), string(areas),
		rec.ResponseDepth, rec.ResponseClarity, rec.ResponseRelevance,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	return id, nil
}

// GetReport returns the report with the given id, or ErrNotFound
func (s *ReportStorage) GetReport(id int64) (*ReportRecord, error) {
	row := s.db.QueryRow(reportSelect+` WHERE id = ?`, id)
	rec, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return rec, nil
}

// GetReportByInterview returns the most recent report for an interview
func (s *ReportStorage) GetReportByInterview(interviewID int64) (*ReportRecord, error) {
	row := s.db.QueryRow(reportSelect+` WHERE interview_id = ? ORDER BY id DESC LIMIT 1`, interviewID)
	rec, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return rec, nil
}

// ListReportsByInterviews returns reports for the given interview ids
func (s *ReportStorage) ListReportsByInterviews(interviewIDs []int64) ([]*ReportRecord, error) {
	if len(interviewIDs) == 0 {
		return []*ReportRecord{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(interviewIDs)), ",")
	args := make([]any, len(interviewIDs))
	for i, id := range interviewIDs {
		args[i] = id
	}

	rows, err := s.db.Query(reportSelect+` WHERE interview_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	records := make([]*ReportRecord, 0)
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return records, nil
}

// AddSkillScores inserts skill scores for an interview
func (s *ReportStorage) AddSkillScores(scores []*SkillScoreRecord) error {
	for _, score := range scores {
		result, err := s.db.Exec(
			`INSERT INTO skill_scores (interview_id, skill, score, evidence) VALUES (?, ?, ?, ?)`,
			score.InterviewID, score.Skill, score.Score, score.Evidence)
		if err != nil {
			return fmt.Errorf("failed to insert skill score: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			score.ID = id
		}
	}
	return nil
}

// GetSkillScores returns the skill scores recorded for an interview
func (s *ReportStorage) GetSkillScores(interviewID int64) ([]*SkillScoreRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, interview_id, skill, score, evidence FROM skill_scores
		WHERE interview_id = ? ORDER BY id`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill scores: %w", err)
	}
	defer rows.Close()

	records := make([]*SkillScoreRecord, 0)
	for rows.Next() {
		var rec SkillScoreRecord
		var evidence sql.NullString
		if err := rows.Scan(&rec.ID, &rec.InterviewID, &rec.Skill, &rec.Score, &evidence); err != nil {
			return nil, fmt.Errorf("failed to scan skill score: %w", err)
		}
		rec.Evidence = evidence.String
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skill scores: %w", err)
	}

	return records, nil
}

const reportSelect = `SELECT id, interview_id, overall_score, recommendation, feedback,
	sentiment, confidence_level, key_strengths, areas_for_improvement,
	response_depth, response_clarity, response_relevance, created_at FROM reports`

func scanReport(row scanner) (*ReportRecord, error) {
	var rec ReportRecord
	var recommendation, feedback, sentiment, confidence, strengths, areas sql.NullString
	var createdAt string

	err := row.Scan(
		&rec.ID, &rec.InterviewID, &rec.OverallScore, &recommendation, &feedback,
		&sentiment, &confidence, &strengths, &areas,
		&rec.ResponseDepth, &rec.ResponseClarity, &rec.ResponseRelevance, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Recommendation = recommendation.String
	rec.Feedback = feedback.String
	rec.Sentiment = sentiment.String
	rec.ConfidenceLevel = confidence.String
	if strengths.String != "" {
		if err := json.Unmarshal([]byte(strengths.String), &rec.KeyStrengths); err != nil {
			return nil, fmt.Errorf("failed to decode key strengths: %w", err)
		}
	}
	if areas.String != "" {
		if err := json.Unmarshal([]byte(areas.String), &rec.AreasForImprovement); err != nil {
			return nil, fmt.Errorf("failed to decode improvement areas: %w", err)
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &rec, nil
}
