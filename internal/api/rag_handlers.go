package api

import (
	"net/http"
	"strconv"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// GetRAGContext returns the indexed documents most similar to the query
func (h *Handler) GetRAGContext(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	docs, err := h.ragService.Context(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("Failed to retrieve context", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve context")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(docs),
		"results": docs,
	})
}

// SyncRAGIndex rebuilds the embedded context index from current data
func (h *Handler) SyncRAGIndex(w http.ResponseWriter, r *http.Request) {
	count, err := h.ragService.Sync(r.Context())
	if err != nil {
		h.logger.Error("Failed to sync context index", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to sync context index")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "synced",
		"documents": count,
	})
}
