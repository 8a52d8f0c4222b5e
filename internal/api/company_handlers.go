package api

import (
	"net/http"

	"github.com/talentloop/talentloop-server/internal/auth"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// CreateCompany creates a new company account
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Industry string `json:"industry"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	rec := &sqlite.CompanyRecord{
		Name:     req.Name,
		Industry: req.Industry,
		Email:    req.Email,
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.logger.Error("Failed to hash company password", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create company")
			return
		}
		rec.PasswordHash = hash
	}

	if _, err := h.companyStorage.Create(rec); err != nil {
		h.logger.Error("Failed to create company", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create company")
		return
	}

	WriteJSON(w, http.StatusCreated, rec)
}

// GetCompany returns a company by id. The password hash is never serialized.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	rec, err := h.companyStorage.Get(id)
	if err != nil {
		h.writeStorageError(w, err, "company not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// UpdateCompany overwrites a company's mutable fields
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Industry string `json:"industry"`
		Email    string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rec, err := h.companyStorage.Get(id)
	if err != nil {
		h.writeStorageError(w, err, "company not found")
		return
	}
	if req.Name != "" {
		rec.Name = req.Name
	}
	if req.Industry != "" {
		rec.Industry = req.Industry
	}
	if req.Email != "" {
		rec.Email = req.Email
	}
	if err := h.companyStorage.Update(rec); err != nil {
		h.writeStorageError(w, err, "company not found")
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

// DeleteCompany removes a company
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	if err := h.companyStorage.Delete(id); err != nil {
		h.writeStorageError(w, err, "company not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
