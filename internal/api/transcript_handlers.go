package api

import (
	"net/http"
	"time"

	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// AppendTranscript stores transcript entries for an interview. The bot
// uploads the full conversation in one batch after the call ends, but
// incremental appends are accepted too.
func (h *Handler) AppendTranscript(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	var req struct {
		Entries []struct {
			Speaker   string    `json:"speaker"`
			Content   string    `json:"content"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"entries"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "entries are required")
		return
	}

	if _, err := h.interviewService.Get(r.Context(), id); err != nil {
		h.writeStorageError(w, err, "interview not found")
		return
	}

	stored := 0
	for _, entry := range req.Entries {
		if entry.Speaker == "" || entry.Content == "" {
			writeError(w, http.StatusBadRequest, "each entry needs a speaker and content")
			return
		}
		rec := &sqlite.TranscriptRecord{
			InterviewID: id,
			Speaker:     entry.Speaker,
			Content:     entry.Content,
			CreatedAt:   entry.Timestamp,
		}
		if _, err := h.transcriptStorage.Append(rec); err != nil {
			h.logger.Error("Failed to append transcript entry",
				logger.Int64("interview_id", id),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store transcript")
			return
		}
		stored++
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"interview_id": id,
		"stored":       stored,
	})
}

// GetTranscript returns the full transcript for an interview in order
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid interview id")
		return
	}

	if _, err := h.interviewService.Get(r.Context(), id); err != nil {
		h.writeStorageError(w, err, "interview not found")
		return
	}

	records, err := h.transcriptStorage.GetByInterview(id)
	if err != nil {
		h.logger.Error("Failed to load transcript",
			logger.Int64("interview_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"interview_id": id,
		"count":        len(records),
		"transcript":   records,
	})
}
