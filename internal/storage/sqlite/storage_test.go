package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInterviewLifecycleColumns(t *testing.T) {
	db := openTestDB(t)
	store := NewInterviewStorage(db, logger.NewNop())

	scheduled := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	rec := &InterviewRecord{CandidateID: 1, CompanyID: 2, JobID: 3, ScheduledAt: scheduled}
	id, err := store.Create(rec)
	require.NoError(t, err)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.True(t, got.ScheduledAt.Equal(scheduled))
	assert.Empty(t, got.BotURL)

	require.NoError(t, store.UpdateStarted(id, StatusInProgress, "wss://bots.example.com/1"))
	got, err = store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, "wss://bots.example.com/1", got.BotURL)

	require.NoError(t, store.UpdateStatus(id, StatusCompleted))
	got, err = store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestInterviewUnknownIDs(t *testing.T) {
	db := openTestDB(t)
	store := NewInterviewStorage(db, logger.NewNop())

	_, err := store.Get(999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.UpdateStatus(999, StatusCompleted), ErrNotFound)
	assert.ErrorIs(t, store.UpdateStarted(999, StatusInProgress, "x"), ErrNotFound)
}

func TestInterviewListFiltersByCandidate(t *testing.T) {
	db := openTestDB(t)
	store := NewInterviewStorage(db, logger.NewNop())

	for _, candidateID := range []int64{1, 1, 2} {
		_, err := store.Create(&InterviewRecord{CandidateID: candidateID, CompanyID: 1, JobID: 1})
		require.NoError(t, err)
	}

	all, err := store.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	candidateID := int64(1)
	filtered, err := store.List(&candidateID)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, rec := range filtered {
		assert.Equal(t, candidateID, rec.CandidateID)
	}
}

func TestJobSkillsFollowJob(t *testing.T) {
	db := openTestDB(t)
	store := NewJobStorage(db, logger.NewNop())

	id, err := store.Create(&JobRecord{CompanyID: 1, Title: "Backend Engineer", Status: JobStatusPending})
	require.NoError(t, err)
	require.NoError(t, store.AddSkills(id, []string{"Go", "SQL", "Docker"}))

	skills, err := store.GetSkills(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go", "SQL", "Docker"}, skills)

	require.NoError(t, store.DeleteSkill(id, "Docker"))
	skills, err = store.GetSkills(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go", "SQL"}, skills)

	// Deleting the job takes its skills with it.
	require.NoError(t, store.Delete(id))
	skills, err = store.GetSkills(id)
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestCandidateResumeUpdate(t *testing.T) {
	db := openTestDB(t)
	store := NewCandidateStorage(db, logger.NewNop())

	id, err := store.Create(&CandidateRecord{Name: "Ada", Email: "ada@example.com", JobID: 1, CompanyID: 1})
	require.NoError(t, err)

	require.NoError(t, store.UpdateResumeText(id, "Ten years of Go."))
	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Ten years of Go.", got.ResumeText)

	byEmail, err := store.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
}

func TestReportRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewReportStorage(db, logger.NewNop())

	rec := &ReportRecord{
		InterviewID:         5,
		OverallScore:        78,
		Recommendation:      "hire",
		Feedback:            "Solid systems knowledge.",
		Sentiment:           "positive",
		ConfidenceLevel:     "high",
		KeyStrengths:        []string{"concurrency", "debugging"},
		AreasForImprovement: []string{"distributed tracing"},
		ResponseDepth:       8,
		ResponseClarity:     7,
		ResponseRelevance:   9,
	}
	_, err := store.CreateReport(rec)
	require.NoError(t, err)

	got, err := store.GetReportByInterview(5)
	require.NoError(t, err)
	assert.Equal(t, 78, got.OverallScore)
	assert.Equal(t, []string{"concurrency", "debugging"}, got.KeyStrengths)
	assert.Equal(t, []string{"distributed tracing"}, got.AreasForImprovement)

	require.NoError(t, store.AddSkillScores([]*SkillScoreRecord{
		{InterviewID: 5, Skill: "Go", Score: 8, Evidence: "explained the scheduler"},
		{InterviewID: 5, Skill: "SQL", Score: 6},
	}))
	scores, err := store.GetSkillScores(5)
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	batch, err := store.ListReportsByInterviews([]int64{5, 6})
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestContextReplaceIsUpsert(t *testing.T) {
	db := openTestDB(t)
	store := NewContextStorage(db, logger.NewNop())

	_, err := store.Replace(&ContextRecord{Source: "job", SourceID: 1, Content: "old", Embedding: []float32{1, 0}})
	require.NoError(t, err)
	_, err = store.Replace(&ContextRecord{Source: "job", SourceID: 1, Content: "new", Embedding: []float32{0, 1}})
	require.NoError(t, err)

	rows, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].Content)
	assert.Equal(t, []float32{0, 1}, rows[0].Embedding)
}

func TestUserPasswordUpdate(t *testing.T) {
	db := openTestDB(t)
	store := NewUserStorage(db, logger.NewNop())

	id, err := store.Create(&UserRecord{
		Name: "Ada", Email: "ada@example.com",
		PasswordHash: "hash-1", Role: "candidate", MustResetPassword: true,
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdatePassword(id, "hash-2", false))
	got, err := store.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.PasswordHash)
	assert.False(t, got.MustResetPassword)
}

func TestTranscriptOrder(t *testing.T) {
	db := openTestDB(t)
	store := NewTranscriptStorage(db, logger.NewNop())

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		_, err := store.Append(&TranscriptRecord{
			InterviewID: 1, Speaker: "candidate", Content: text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := store.GetByInterview(1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Content)
	assert.Equal(t, "third", records[2].Content)
}
