package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// CreateJob creates a new job posting with its required skills
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID   int64    `json:"company_id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Skills      []string `json:"skills"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" || req.CompanyID == 0 {
		writeError(w, http.StatusBadRequest, "title and company_id are required")
		return
	}

	rec := &sqlite.JobRecord{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Status:      sqlite.JobStatusPending,
	}
	if _, err := h.jobStorage.Create(rec); err != nil {
		h.logger.Error("Failed to create job", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if len(req.Skills) > 0 {
		if err := h.jobStorage.AddSkills(rec.ID, req.Skills); err != nil {
			h.logger.Error("Failed to add job skills",
				logger.Int64("job_id", rec.ID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to add job skills")
			return
		}
	}

	WriteJSON(w, http.StatusCreated, rec)
}

// GetJob returns a job with its required skills
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	rec, err := h.jobStorage.Get(id)
	if err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}

	skills, err := h.jobStorage.GetSkills(id)
	if err != nil {
		h.logger.Error("Failed to load job skills",
			logger.Int64("job_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load job skills")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"job":    rec,
		"skills": skills,
	})
}

// ListJobs returns jobs, filtered by company_id when provided
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var (
		records []*sqlite.JobRecord
		err     error
	)

	if s := r.URL.Query().Get("company_id"); s != "" {
		companyID, parseErr := strconv.ParseInt(s, 10, 64)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid company_id")
			return
		}
		records, err = h.jobStorage.ListByCompany(companyID)
	} else {
		records, err = h.jobStorage.ListAll()
	}
	if err != nil {
		h.logger.Error("Failed to list jobs", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(records),
		"jobs":  records,
	})
}

// UpdateJob overwrites a job's title and description
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rec, err := h.jobStorage.Get(id)
	if err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}
	if req.Title != "" {
		rec.Title = req.Title
	}
	if req.Description != "" {
		rec.Description = req.Description
	}
	if err := h.jobStorage.Update(rec); err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// UpdateJobStatus changes a job's status (pending or filled)
func (h *Handler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != sqlite.JobStatusPending && req.Status != sqlite.JobStatusFilled {
		writeError(w, http.StatusBadRequest, "status must be pending or filled")
		return
	}

	if err := h.jobStorage.UpdateStatus(id, req.Status); err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// DeleteJob removes a job and its skills
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := h.jobStorage.Delete(id); err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetJobSkills returns the required skills for a job
func (h *Handler) GetJobSkills(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	skills, err := h.jobStorage.GetSkills(id)
	if err != nil {
		h.logger.Error("Failed to load job skills",
			logger.Int64("job_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load job skills")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"job_id": id,
		"skills": skills,
	})
}

// AddJobSkills attaches required skills to a job
func (h *Handler) AddJobSkills(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var req struct {
		Skills []string `json:"skills"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Skills) == 0 {
		writeError(w, http.StatusBadRequest, "skills are required")
		return
	}

	if _, err := h.jobStorage.Get(id); err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}
	if err := h.jobStorage.AddSkills(id, req.Skills); err != nil {
		h.logger.Error("Failed to add job skills",
			logger.Int64("job_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add job skills")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"job_id": id,
		"added":  req.Skills,
	})
}

// DeleteJobSkill detaches one skill from a job
func (h *Handler) DeleteJobSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	skill := chi.URLParam(r, "skill")
	if skill == "" {
		writeError(w, http.StatusBadRequest, "missing skill")
		return
	}

	if err := h.jobStorage.DeleteSkill(id, skill); err != nil {
		h.writeStorageError(w, err, "skill not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
