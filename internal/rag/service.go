package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/talentloop/talentloop-server/internal/ai"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// ContextStore is the embedded-document persistence surface
type ContextStore interface {
	Replace(rec *sqlite.ContextRecord) (int64, error)
	ListAll() ([]*sqlite.ContextRecord, error)
}

// JobStore lists and resolves job postings for indexing
type JobStore interface {
	ListAll() ([]*sqlite.JobRecord, error)
	Get(id int64) (*sqlite.JobRecord, error)
}

// CompanyStore resolves the company a job belongs to
type CompanyStore interface {
	Get(id int64) (*sqlite.CompanyRecord, error)
}

// CandidateStore lists candidates for indexing
type CandidateStore interface {
	ListAll() ([]*sqlite.CandidateRecord, error)
}

// InterviewStore lists interview sessions for indexing
type InterviewStore interface {
	List(candidateID *int64) ([]*sqlite.InterviewRecord, error)
}

// Service answers free-text queries with the most similar indexed documents
type Service struct {
	embedder     ai.Embedder
	store        ContextStore
	jobs         JobStore
	companies    CompanyStore
	candidates   CandidateStore
	interviews   InterviewStore
	defaultLimit int
	logger       *logger.Logger
}

// NewService creates a new RAG service
func NewService(
	embedder ai.Embedder,
	store ContextStore,
	jobs JobStore,
	companies CompanyStore,
	candidates CandidateStore,
	interviews InterviewStore,
	defaultLimit int,
	log *logger.Logger,
) *Service {
	return &Service{
		embedder:     embedder,
		store:        store,
		jobs:         jobs,
		companies:    companies,
		candidates:   candidates,
		interviews:   interviews,
		defaultLimit: defaultLimit,
		logger:       log.Named("rag"),
	}
}

// ScoredDocument is one retrieval result
type ScoredDocument struct {
	Source     string  `json:"source"`
	SourceID   int64   `json:"source_id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Context embeds the query and returns the limit most similar indexed
// documents, best first. A limit <= 0 uses the configured default.
func (s *Service) Context(ctx context.Context, query string, limit int) ([]ScoredDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	records, err := s.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load context rows: %w", err)
	}

	scored := make([]ScoredDocument, 0, len(records))
	for _, rec := range records {
		sim, ok := cosineSimilarity(queryVec, rec.Embedding)
		if !ok {
			s.logger.Warn("Skipping context row with mismatched embedding",
				logger.String("source", rec.Source),
				logger.Int64("source_id", rec.SourceID))
			continue
		}
		scored = append(scored, ScoredDocument{
			Source:     rec.Source,
			SourceID:   rec.SourceID,
			Content:    rec.Content,
			Similarity: sim,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Sync rebuilds the context table from jobs, candidates and interviews and
// returns the number of documents indexed. Any embedding failure aborts the
// sync with an error.
func (s *Service) Sync(ctx context.Context) (int, error) {
	type document struct {
		source   string
		sourceID int64
		content  string
	}
	var docs []document

	jobs, err := s.jobs.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	for _, job := range jobs {
		content := fmt.Sprintf("[Job] %s", job.Title)
		if company, err := s.companies.Get(job.CompanyID); err == nil {
			if company.Industry != "" {
				content = fmt.Sprintf("[Job] %s at %s (%s)", job.Title, company.Name, company.Industry)
			} else {
				content = fmt.Sprintf("[Job] %s at %s", job.Title, company.Name)
			}
		}
		if job.Description != "" {
			content += ": " + job.Description
		}
		docs = append(docs, document{source: "job", sourceID: job.ID, content: content})
	}

	candidates, err := s.candidates.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	for _, candidate := range candidates {
		content := fmt.Sprintf("[Candidate] %s (%s)", candidate.Name, candidate.Email)
		if candidate.ResumeText != "" {
			content += ": " + candidate.ResumeText
		}
		docs = append(docs, document{source: "candidate", sourceID: candidate.ID, content: content})
	}

	interviews, err := s.interviews.List(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list interviews: %w", err)
	}
	for _, interview := range interviews {
		content := fmt.Sprintf("[Interview] session %d, status %s", interview.ID, interview.Status)
		if job, err := s.jobs.Get(interview.JobID); err == nil {
			content = fmt.Sprintf("[Interview] session %d for %s, status %s",
				interview.ID, job.Title, interview.Status)
		}
		docs = append(docs, document{source: "interview", sourceID: interview.ID, content: content})
	}

	if len(docs) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.content)
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed context documents: %w", err)
	}

	for i, doc := range docs {
		if _, err := s.store.Replace(&sqlite.ContextRecord{
			Source:    doc.source,
			SourceID:  doc.sourceID,
			Content:   doc.content,
			Embedding: vectors[i],
		}); err != nil {
			return 0, fmt.Errorf("failed to store context for %s %d: %w", doc.source, doc.sourceID, err)
		}
	}

	s.logger.Info("Context index rebuilt", logger.Int("documents", len(docs)))
	return len(docs), nil
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// The second return value is false when the vectors cannot be compared.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
