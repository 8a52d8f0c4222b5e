package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/talentloop/talentloop-server/internal/analysis"
	"github.com/talentloop/talentloop-server/internal/auth"
	"github.com/talentloop/talentloop-server/internal/bot"
	"github.com/talentloop/talentloop-server/internal/interview"
	"github.com/talentloop/talentloop-server/internal/invite"
	"github.com/talentloop/talentloop-server/internal/rag"
	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	interviewService *interview.Service
	analysisService  *analysis.Service
	ragService       *rag.Service
	authService      *auth.Service
	inviteService    *invite.Service
	relayServer      *relay.Server
	relayRegistry    *relay.Registry

	candidateStorage  *sqlite.CandidateStorage
	companyStorage    *sqlite.CompanyStorage
	jobStorage        *sqlite.JobStorage
	reportStorage     *sqlite.ReportStorage
	transcriptStorage *sqlite.TranscriptStorage

	logger *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	interviewService *interview.Service,
	analysisService *analysis.Service,
	ragService *rag.Service,
	authService *auth.Service,
	inviteService *invite.Service,
	relayServer *relay.Server,
	relayRegistry *relay.Registry,
	candidateStorage *sqlite.CandidateStorage,
	companyStorage *sqlite.CompanyStorage,
	jobStorage *sqlite.JobStorage,
	reportStorage *sqlite.ReportStorage,
	transcriptStorage *sqlite.TranscriptStorage,
	log *logger.Logger,
) *Handler {
	return &Handler{
		interviewService:  interviewService,
		analysisService:   analysisService,
		ragService:        ragService,
		authService:       authService,
		inviteService:     inviteService,
		relayServer:       relayServer,
		relayRegistry:     relayRegistry,
		candidateStorage:  candidateStorage,
		companyStorage:    companyStorage,
		jobStorage:        jobStorage,
		reportStorage:     reportStorage,
		transcriptStorage: transcriptStorage,
		logger:            log.Named("api-handler"),
	}
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"bot_connected": h.relayRegistry.Connected(),
		"pending_bots":  h.relayRegistry.PendingCount(),
	})
}

// HandleBotWebSocket hands the bot process's connection to the relay
func (h *Handler) HandleBotWebSocket(w http.ResponseWriter, r *http.Request) {
	h.relayServer.HandleConnection(w, r)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error body with the given status
func writeError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// writeStorageError maps storage errors to API responses
func (h *Handler) writeStorageError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	h.logger.Error("Storage operation failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// pathID parses the {id} URL parameter
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeBody decodes a JSON request body into v
func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// upstreamStatus maps bot runner failures to 502, everything else to 500
func upstreamStatus(err error) int {
	var ue *bot.UpstreamError
	if errors.As(err, &ue) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
