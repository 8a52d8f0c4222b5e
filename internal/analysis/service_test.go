package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentloop/talentloop-server/internal/ai"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// fakeChat returns a canned response and records the prompt it saw
type fakeChat struct {
	response string
	err      error
	prompts  []string
}

func (c *fakeChat) ChatCompletion(ctx context.Context, messages []ai.ChatMessage, config ai.ChatConfig) (string, error) {
	for _, msg := range messages {
		if msg.Role == "user" {
			c.prompts = append(c.prompts, msg.Content)
		}
	}
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

type fakeStores struct {
	interview   *sqlite.InterviewRecord
	transcripts []*sqlite.TranscriptRecord
	job         *sqlite.JobRecord
	skills      []string

	reports     []*sqlite.ReportRecord
	skillScores []*sqlite.SkillScoreRecord
}

func (f *fakeStores) Get(id int64) (*sqlite.InterviewRecord, error) {
	if f.interview == nil || f.interview.ID != id {
		return nil, sqlite.ErrNotFound
	}
	return f.interview, nil
}

func (f *fakeStores) GetByInterview(interviewID int64) ([]*sqlite.TranscriptRecord, error) {
	return f.transcripts, nil
}

func (f *fakeStores) GetSkills(id int64) ([]string, error) {
	return f.skills, nil
}

// jobStore adapts fakeStores to the JobStore interface without colliding
// with the InterviewStore Get method
type jobStore struct{ f *fakeStores }

func (j jobStore) Get(id int64) (*sqlite.JobRecord, error) {
	if j.f.job == nil || j.f.job.ID != id {
		return nil, sqlite.ErrNotFound
	}
	return j.f.job, nil
}

func (j jobStore) GetSkills(id int64) ([]string, error) {
	return j.f.skills, nil
}

func (f *fakeStores) CreateReport(rec *sqlite.ReportRecord) (int64, error) {
	rec.ID = int64(len(f.reports) + 1)
	f.reports = append(f.reports, rec)
	return rec.ID, nil
}

func (f *fakeStores) AddSkillScores(scores []*sqlite.SkillScoreRecord) error {
	f.skillScores = append(f.skillScores, scores...)
	return nil
}

const goodResponse = `{
	"overall_score": 82,
	"recommendation": "hire",
	"feedback": "Strong fundamentals with clear communication.",
	"skill_scores": [
		{"skill": "go", "score": 8, "evidence": "explained goroutine scheduling"},
		{"skill": "sql", "score": 6, "evidence": "basic joins only"}
	],
	"sentiment": "positive",
	"confidence_level": "high",
	"key_strengths": ["concurrency", "communication"],
	"areas_for_improvement": ["query optimization"],
	"response_quality": {"depth": 8, "clarity": 9, "relevance": 8}
}`

func newFixture(response string) (*Service, *fakeStores, *fakeChat) {
	stores := &fakeStores{
		interview: &sqlite.InterviewRecord{ID: 1, JobID: 3, CandidateID: 7, Status: sqlite.StatusCompleted},
		job:       &sqlite.JobRecord{ID: 3, Title: "Backend Engineer", Description: "Build APIs"},
		skills:    []string{"go", "sql"},
		transcripts: []*sqlite.TranscriptRecord{
			{InterviewID: 1, Speaker: "interviewer", Content: "Tell me about goroutines.", CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
			{InterviewID: 1, Speaker: "candidate", Content: "They are lightweight threads.", CreatedAt: time.Date(2026, 3, 1, 10, 0, 30, 0, time.UTC)},
		},
	}
	chat := &fakeChat{response: response}
	svc := NewService(chat, ai.ChatConfig{Model: "gemini-2.0-flash"}, stores, stores, jobStore{stores}, stores, logger.NewNop())
	return svc, stores, chat
}

func TestAnalyzePersistsReportAndSkillScores(t *testing.T) {
	svc, stores, _ := newFixture(goodResponse)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 82, report.OverallScore)
	assert.Equal(t, "hire", report.Recommendation)
	assert.Equal(t, []string{"concurrency", "communication"}, report.KeyStrengths)
	assert.Equal(t, 9, report.ResponseClarity)

	require.Len(t, stores.reports, 1)
	require.Len(t, stores.skillScores, 2)
	assert.Equal(t, "go", stores.skillScores[0].Skill)
	assert.Equal(t, 8, stores.skillScores[0].Score)
}

func TestAnalyzePromptContainsJobContextAndTranscript(t *testing.T) {
	svc, _, chat := newFixture(goodResponse)

	_, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, chat.prompts, 1)
	prompt := chat.prompts[0]
	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "go, sql")
	assert.Contains(t, prompt, "[10:00:00] interviewer: Tell me about goroutines.")
	assert.Contains(t, prompt, "[10:00:30] candidate: They are lightweight threads.")
}

func TestAnalyzeAcceptsFencedJSON(t *testing.T) {
	svc, stores, _ := newFixture("```json\n" + goodResponse + "\n```")

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 82, report.OverallScore)
	assert.Len(t, stores.reports, 1)
}

func TestAnalyzeNonJSONResponseFailsWithoutReport(t *testing.T) {
	svc, stores, _ := newFixture("The candidate seems fine to me.")

	_, err := svc.Analyze(context.Background(), 1)
	require.Error(t, err)

	var ae *AnalysisError
	assert.ErrorAs(t, err, &ae)
	assert.Empty(t, stores.reports)
}

func TestAnalyzeOutOfRangeScoreRejected(t *testing.T) {
	svc, stores, _ := newFixture(`{"overall_score": 140, "recommendation": "hire", "feedback": "x",
		"skill_scores": [], "sentiment": "positive", "confidence_level": "high",
		"key_strengths": [], "areas_for_improvement": [],
		"response_quality": {"depth": 5, "clarity": 5, "relevance": 5}}`)

	_, err := svc.Analyze(context.Background(), 1)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Empty(t, stores.reports)
}

func TestAnalyzeChatFailureWrapped(t *testing.T) {
	svc, stores, chat := newFixture("")
	chat.err = errors.New("rate limited")

	_, err := svc.Analyze(context.Background(), 1)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int64(1), ae.InterviewID)
	assert.Empty(t, stores.reports)
}

func TestAnalyzeEmptyTranscriptFails(t *testing.T) {
	svc, stores, _ := newFixture(goodResponse)
	stores.transcripts = nil

	_, err := svc.Analyze(context.Background(), 1)
	var ae *AnalysisError
	assert.ErrorAs(t, err, &ae)
}

func TestAnalyzeUnknownInterviewFails(t *testing.T) {
	svc, _, _ := newFixture(goodResponse)

	_, err := svc.Analyze(context.Background(), 404)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}
