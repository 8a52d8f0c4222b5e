package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/talentloop/talentloop-server/internal/auth"
	"github.com/talentloop/talentloop-server/internal/invite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Login verifies credentials and returns a JWT
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("Login failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ResetPassword replaces the password of the bearer-token account
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.NewPassword) < 8 {
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}

	if err := h.authService.ResetPassword(token, req.NewPassword); err != nil {
		h.logger.Warn("Password reset rejected", logger.Error(err))
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// SendInvite runs the candidate invitation flow
func (h *Handler) SendInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateName string    `json:"candidate_name"`
		Email         string    `json:"email"`
		JobID         int64     `json:"job_id"`
		ScheduledAt   time.Time `json:"scheduled_at"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CandidateName == "" || req.Email == "" || req.JobID == 0 {
		writeError(w, http.StatusBadRequest, "candidate_name, email and job_id are required")
		return
	}

	result, err := h.inviteService.Invite(r.Context(), invite.Request{
		CandidateName: req.CandidateName,
		Email:         req.Email,
		JobID:         req.JobID,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		h.writeStorageError(w, err, "job not found")
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// bearerToken extracts the token from an Authorization header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
