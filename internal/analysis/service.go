package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentloop/talentloop-server/internal/ai"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// AnalysisError wraps a failed analysis so callers can tell an LLM or
// decoding failure apart from storage errors. No default report is
// fabricated on failure.
type AnalysisError struct {
	InterviewID int64
	Err         error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of interview %d failed: %v", e.InterviewID, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// TranscriptStore provides the conversation to analyze
type TranscriptStore interface {
	GetByInterview(interviewID int64) ([]*sqlite.TranscriptRecord, error)
}

// InterviewStore resolves the session under analysis
type InterviewStore interface {
	Get(id int64) (*sqlite.InterviewRecord, error)
}

// JobStore provides the posting the candidate interviewed for
type JobStore interface {
	Get(id int64) (*sqlite.JobRecord, error)
	GetSkills(id int64) ([]string, error)
}

// ReportStore persists the finished assessment
type ReportStore interface {
	CreateReport(rec *sqlite.ReportRecord) (int64, error)
	AddSkillScores(scores []*sqlite.SkillScoreRecord) error
}

// assessment is the JSON document the model is asked to produce
type assessment struct {
	OverallScore   int    `json:"overall_score"`
	Recommendation string `json:"recommendation"`
	Feedback       string `json:"feedback"`
	SkillScores    []struct {
		Skill    string `json:"skill"`
		Score    int    `json:"score"`
		Evidence string `json:"evidence"`
	} `json:"skill_scores"`
	Sentiment           string   `json:"sentiment"`
	ConfidenceLevel     string   `json:"confidence_level"`
	KeyStrengths        []string `json:"key_strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	ResponseQuality     struct {
		Depth     int `json:"depth"`
		Clarity   int `json:"clarity"`
		Relevance int `json:"relevance"`
	} `json:"response_quality"`
}

// Service turns finished interview transcripts into structured reports
type Service struct {
	chat        ai.ChatProvider
	chatConfig  ai.ChatConfig
	interviews  InterviewStore
	transcripts TranscriptStore
	jobs        JobStore
	reports     ReportStore
	logger      *logger.Logger
}

// NewService creates a new analysis service
func NewService(
	chat ai.ChatProvider,
	chatConfig ai.ChatConfig,
	interviews InterviewStore,
	transcripts TranscriptStore,
	jobs JobStore,
	reports ReportStore,
	log *logger.Logger,
) *Service {
	chatConfig.JSONOutput = true
	return &Service{
		chat:        chat,
		chatConfig:  chatConfig,
		interviews:  interviews,
		transcripts: transcripts,
		jobs:        jobs,
		reports:     reports,
		logger:      log.Named("analysis"),
	}
}

const systemPrompt = `You are an expert technical recruiter evaluating an interview transcript.
Respond with a single JSON object matching exactly this schema:
{
  "overall_score": <integer 0-100>,
  "recommendation": "<strong_hire|hire|maybe|no_hire>",
  "feedback": "<2-4 sentence overall assessment>",
  "skill_scores": [{"skill": "<name>", "score": <integer 0-10>, "evidence": "<quote or observation>"}],
  "sentiment": "<positive|neutral|negative>",
  "confidence_level": "<high|medium|low>",
  "key_strengths": ["<strength>"],
  "areas_for_improvement": ["<area>"],
  "response_quality": {"depth": <integer 0-10>, "clarity": <integer 0-10>, "relevance": <integer 0-10>}
}
Score every required skill listed in the job context, even when the transcript gives little evidence.
Do not include any text outside the JSON object.`

// Analyze runs the LLM assessment over an interview's transcript and
// persists the resulting report and skill scores
func (s *Service) Analyze(ctx context.Context, interviewID int64) (*sqlite.ReportRecord, error) {
	interview, err := s.interviews.Get(interviewID)
	if err != nil {
		return nil, err
	}

	lines, err := s.transcripts.GetByInterview(interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if len(lines) == 0 {
		return nil, &AnalysisError{InterviewID: interviewID, Err: fmt.Errorf("no transcript recorded")}
	}

	prompt := s.buildPrompt(interview, lines)

	response, err := s.chat.ChatCompletion(ctx, []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, s.chatConfig)
	if err != nil {
		return nil, &AnalysisError{InterviewID: interviewID, Err: err}
	}

	var result assessment
	if err := ai.ExtractJSON(response, &result); err != nil {
		return nil, &AnalysisError{InterviewID: interviewID, Err: err}
	}
	if err := validate(&result); err != nil {
		return nil, &AnalysisError{InterviewID: interviewID, Err: err}
	}

	report := &sqlite.ReportRecord{
		InterviewID:         interviewID,
		OverallScore:        result.OverallScore,
		Recommendation:      result.Recommendation,
		Feedback:            result.Feedback,
		Sentiment:           result.Sentiment,
		ConfidenceLevel:     result.ConfidenceLevel,
		KeyStrengths:        result.KeyStrengths,
		AreasForImprovement: result.AreasForImprovement,
		ResponseDepth:       result.ResponseQuality.Depth,
		ResponseClarity:     result.ResponseQuality.Clarity,
		ResponseRelevance:   result.ResponseQuality.Relevance,
	}

	if _, err := s.reports.CreateReport(report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	if len(result.SkillScores) > 0 {
		scores := make([]*sqlite.SkillScoreRecord, 0, len(result.SkillScores))
		for _, sc := range result.SkillScores {
			scores = append(scores, &sqlite.SkillScoreRecord{
				InterviewID: interviewID,
				Skill:       sc.Skill,
				Score:       sc.Score,
				Evidence:    sc.Evidence,
			})
		}
		if err := s.reports.AddSkillScores(scores); err != nil {
			return nil, fmt.Errorf("failed to persist skill scores: %w", err)
		}
	}

	s.logger.Info("Interview analyzed",
		logger.Int64("interview_id", interviewID),
		logger.Int("overall_score", report.OverallScore),
		logger.Int("skill_scores", len(result.SkillScores)))

	return report, nil
}

// buildPrompt renders the job context and the transcript the way the model
// sees it: one "[ts] speaker: text" line per utterance
func (s *Service) buildPrompt(interview *sqlite.InterviewRecord, lines []*sqlite.TranscriptRecord) string {
	var b strings.Builder

	if job, err := s.jobs.Get(interview.JobID); err == nil {
		fmt.Fprintf(&b, "Position: %s\n", job.Title)
		if job.Description != "" {
			fmt.Fprintf(&b, "Job description: %s\n", job.Description)
		}
		if skills, err := s.jobs.GetSkills(interview.JobID); err == nil && len(skills) > 0 {
			fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(skills, ", "))
		}
	} else {
		s.logger.Warn("Job not found for analysis",
			logger.Int64("interview_id", interview.ID),
			logger.Int64("job_id", interview.JobID))
	}

	b.WriteString("\nTranscript:\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			line.CreatedAt.Format("15:04:05"), line.Speaker, line.Content)
	}

	return b.String()
}

// validate rejects documents with out-of-range scores before they reach
// storage
func validate(a *assessment) error {
	if a.OverallScore < 0 || a.OverallScore > 100 {
		return fmt.Errorf("overall_score %d out of range", a.OverallScore)
	}
	for _, sc := range a.SkillScores {
		if sc.Skill == "" {
			return fmt.Errorf("skill score with empty skill name")
		}
		if sc.Score < 0 || sc.Score > 10 {
			return fmt.Errorf("skill %q score %d out of range", sc.Skill, sc.Score)
		}
	}
	for _, v := range []int{a.ResponseQuality.Depth, a.ResponseQuality.Clarity, a.ResponseQuality.Relevance} {
		if v < 0 || v > 10 {
			return fmt.Errorf("response quality value %d out of range", v)
		}
	}
	return nil
}
