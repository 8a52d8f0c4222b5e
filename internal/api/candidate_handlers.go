package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

const maxResumeBytes = 1 << 20

// CreateCandidate creates a new candidate
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		JobID     int64  `json:"job_id"`
		CompanyID int64  `json:"company_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	rec := &sqlite.CandidateRecord{
		Name:      req.Name,
		Email:     req.Email,
		JobID:     req.JobID,
		CompanyID: req.CompanyID,
	}
	if _, err := h.candidateStorage.Create(rec); err != nil {
		h.logger.Error("Failed to create candidate", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create candidate")
		return
	}

	WriteJSON(w, http.StatusCreated, rec)
}

// GetCandidate returns a candidate by id
func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}

	rec, err := h.candidateStorage.Get(id)
	if err != nil {
		h.writeStorageError(w, err, "candidate not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// ListCandidates returns candidates, filtered by job_id when provided
func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	var (
		records []*sqlite.CandidateRecord
		err     error
	)

	if s := r.URL.Query().Get("job_id"); s != "" {
		jobID, parseErr := strconv.ParseInt(s, 10, 64)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid job_id")
			return
		}
		records, err = h.candidateStorage.ListByJob(jobID)
	} else {
		records, err = h.candidateStorage.ListAll()
	}
	if err != nil {
		h.logger.Error("Failed to list candidates", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list candidates")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count":      len(records),
		"candidates": records,
	})
}

// UpdateCandidate overwrites a candidate's mutable fields
func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}

	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		JobID     int64  `json:"job_id"`
		CompanyID int64  `json:"company_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rec, err := h.candidateStorage.Get(id)
	if err != nil {
		h.writeStorageError(w, err, "candidate not found")
		return
	}
	if req.Name != "" {
		rec.Name = req.Name
	}
	if req.Email != "" {
		rec.Email = req.Email
	}
	if req.JobID != 0 {
		rec.JobID = req.JobID
	}
	if req.CompanyID != 0 {
		rec.CompanyID = req.CompanyID
	}
	if err := h.candidateStorage.Update(rec); err != nil {
		h.writeStorageError(w, err, "candidate not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// DeleteCandidate removes a candidate
func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}

	if err := h.candidateStorage.Delete(id); err != nil {
		h.writeStorageError(w, err, "candidate not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadResume stores the plain-text resume body for a candidate
func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxResumeBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		writeError(w, http.StatusBadRequest, "resume text is empty")
		return
	}

	if err := h.candidateStorage.UpdateResumeText(id, text); err != nil {
		h.writeStorageError(w, err, "candidate not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "stored",
		"bytes":  len(text),
	})
}
