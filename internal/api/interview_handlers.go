package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/talentloop/talentloop-server/internal/analysis"
	"github.com/talentloop/talentloop-server/internal/interview"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// CreateInterview creates a new interview session in state pending
func (h *Handler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateID int64     `json:"candidate_id"`
		CompanyID   int64     `json:"company_id"`
		JobID       int64     `json:"job_id"`
		ScheduledAt time.Time `json:"scheduled_at"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CandidateID == 0 || req.JobID == 0 {
		writeError(w, http.StatusBadRequest, "candidate_id and job_id are required")
		return
	}

	rec, err := h.interviewService.Create(r.Context(), req.CandidateID, req.CompanyID, req.JobID, req.ScheduledAt)
	if err != nil {
		h.logger.Error("Failed to create interview", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create interview")
		return
	}

	WriteJSON(w, http.StatusCreated, rec)
}

// ListInterviews returns all interviews, optionally filtered by candidate_id
func (h *Handler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	var candidateID *int64
	if s := r.URL.Query().Get("candidate_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid candidate_id")
			return
		}
		candidateID = &id
	}

	records, err := h.interviewService.List(r.Context(), candidateID)
	if err != nil {
		h.logger.Error("Failed to list interviews", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list interviews")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count":      len(records),
		"interviews": records,
	})
}

// GetInterview returns an interview by id
func (h *Handler) GetInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	rec, err := h.interviewService.Get(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "interview not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// StartInterview transitions an interview to in_progress and launches its bot
func (h *Handler) StartInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	rec, err := h.interviewService.Start(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, sqlite.ErrNotFound):
			writeError(w, http.StatusNotFound, "interview not found")
		case errors.Is(err, interview.ErrAlreadyCompleted):
			writeError(w, http.StatusConflict, "interview already completed")
		default:
			h.logger.Error("Failed to start interview",
				logger.Int64("interview_id", id),
				logger.Error(err))
			writeError(w, upstreamStatus(err), "failed to start interview")
		}
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// EndInterview transitions an interview to completed
func (h *Handler) EndInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	rec, err := h.interviewService.End(r.Context(), id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "interview not found")
			return
		}
		h.logger.Error("Failed to end interview",
			logger.Int64("interview_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to end interview")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// AnalyzeInterview runs the LLM analysis over the interview's transcript
func (h *Handler) AnalyzeInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	report, err := h.analysisService.Analyze(r.Context(), id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "interview not found")
			return
		}
		var ae *analysis.AnalysisError
		if errors.As(err, &ae) {
			h.logger.Error("Analysis failed",
				logger.Int64("interview_id", id),
				logger.Error(err))
			writeError(w, http.StatusUnprocessableEntity, ae.Error())
			return
		}
		h.logger.Error("Failed to analyze interview",
			logger.Int64("interview_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to analyze interview")
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// GetInterviewReport returns the most recent report for an interview
func (h *Handler) GetInterviewReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	report, err := h.reportStorage.GetReportByInterview(id)
	if err != nil {
		h.writeStorageError(w, err, "report not found")
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// GetInterviewAnalysis returns the stored report together with its skill
// scores
func (h *Handler) GetInterviewAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	report, err := h.reportStorage.GetReportByInterview(id)
	if err != nil {
		h.writeStorageError(w, err, "analysis not found")
		return
	}

	scores, err := h.reportStorage.GetSkillScores(id)
	if err != nil {
		h.logger.Error("Failed to load skill scores",
			logger.Int64("interview_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load skill scores")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"report":       report,
		"skill_scores": scores,
	})
}
