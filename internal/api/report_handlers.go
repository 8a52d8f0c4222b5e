package api

import (
	"net/http"

	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// CreateReport stores a manually assembled report. When overall_score is
// omitted it is derived as the mean of the interview's skill scores.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InterviewID         int64    `json:"interview_id"`
		OverallScore        *int     `json:"overall_score"`
		Recommendation      string   `json:"recommendation"`
		Feedback            string   `json:"feedback"`
		Sentiment           string   `json:"sentiment"`
		ConfidenceLevel     string   `json:"confidence_level"`
		KeyStrengths        []string `json:"key_strengths"`
		AreasForImprovement []string `json:"areas_for_improvement"`
		ResponseDepth       int      `json:"response_depth"`
		ResponseClarity     int      `json:"response_clarity"`
		ResponseRelevance   int      `json:"response_relevance"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.InterviewID == 0 {
		writeError(w, http.StatusBadRequest, "interview_id is required")
		return
	}

	overall := 0
	if req.OverallScore != nil {
		overall = *req.OverallScore
	} else {
		scores, err := h.reportStorage.GetSkillScores(req.InterviewID)
		if err != nil {
			h.logger.Error("Failed to load skill scores",
				logger.Int64("interview_id", req.InterviewID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to derive overall score")
			return
		}
		if len(scores) == 0 {
			writeError(w, http.StatusBadRequest, "overall_score is required when no skill scores exist")
			return
		}
		sum := 0
		for _, score := range scores {
			sum += score.Score
		}
		// Skill scores are 0-10, the overall score 0-100.
		overall = sum * 10 / len(scores)
	}
	if overall < 0 || overall > 100 {
		writeError(w, http.StatusBadRequest, "overall_score must be between 0 and 100")
		return
	}

	rec := &sqlite.ReportRecord{
		InterviewID:         req.InterviewID,
		OverallScore:        overall,
		Recommendation:      req.Recommendation,
		Feedback:            req.Feedback,
		Sentiment:           req.Sentiment,
		ConfidenceLevel:     req.ConfidenceLevel,
		KeyStrengths:        req.KeyStrengths,
		AreasForImprovement: req.AreasForImprovement,
		ResponseDepth:       req.ResponseDepth,
		ResponseClarity:     req.ResponseClarity,
		ResponseRelevance:   req.ResponseRelevance,
	}
	if _, err := h.reportStorage.CreateReport(rec); err != nil {
		h.logger.Error("Failed to create report", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	WriteJSON(w, http.StatusCreated, rec)
}

// GetReport returns a report by its own id
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	rec, err := h.reportStorage.GetReport(id)
	if err != nil {
		h.writeStorageError(w, err, "report not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// BatchGetReports returns reports for a list of interview ids
func (h *Handler) BatchGetReports(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InterviewIDs []int64 `json:"interview_ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	records, err := h.reportStorage.ListReportsByInterviews(req.InterviewIDs)
	if err != nil {
		h.logger.Error("Failed to batch fetch reports", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch reports")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"reports": records,
	})
}

// AddSkillScores records scored skills for an interview
func (h *Handler) AddSkillScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	var req struct {
		Scores []struct {
			Skill    string `json:"skill"`
			Score    int    `json:"score"`
			Evidence string `json:"evidence"`
		} `json:"scores"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Scores) == 0 {
		writeError(w, http.StatusBadRequest, "scores are required")
		return
	}

	records := make([]*sqlite.SkillScoreRecord, 0, len(req.Scores))
	for _, score := range req.Scores {
		if score.Skill == "" || score.Score < 0 || score.Score > 10 {
			writeError(w, http.StatusBadRequest, "each score needs a skill and a value between 0 and 10")
			return
		}
		records = append(records, &sqlite.SkillScoreRecord{
			InterviewID: id,
			Skill:       score.Skill,
			Score:       score.Score,
			Evidence:    score.Evidence,
		})
	}

	if err := h.reportStorage.AddSkillScores(records); err != nil {
		h.logger.Error("Failed to add skill scores",
			logger.Int64("interview_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add skill scores")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"interview_id": id,
		"added":        len(records),
	})
}

// GetSkillScores returns the skill scores recorded for an interview
func (h *Handler) GetSkillScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	records, err := h.reportStorage.GetSkillScores(id)
	if err != nil {
		h.logger.Error("Failed to load skill scores",
			logger.Int64("interview_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load skill scores")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"interview_id": id,
		"scores":       records,
	})
}
