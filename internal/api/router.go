package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentloop/talentloop-server/internal/analysis"
	"github.com/talentloop/talentloop-server/internal/auth"
	"github.com/talentloop/talentloop-server/internal/config"
	"github.com/talentloop/talentloop-server/internal/interview"
	"github.com/talentloop/talentloop-server/internal/invite"
	"github.com/talentloop/talentloop-server/internal/rag"
	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Router wraps the chi router and its handler dependencies
type Router struct {
	handler *Handler
	config  *config.Config
	logger  *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(
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
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	handler := NewHandler(
		interviewService, analysisService, ragService, authService, inviteService,
		relayServer, relayRegistry,
		candidateStorage, companyStorage, jobStorage, reportStorage, transcriptStorage,
		log,
	)
	return &Router{
		handler: handler,
		config:  cfg,
		logger:  log.Named("api-router"),
	}
}

// Routes builds the HTTP routing table
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.corsMiddleware)

	r.Get("/health", rt.handler.GetHealth)
	r.Get("/ws/bot", rt.handler.HandleBotWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/interviews", func(r chi.Router) {
			r.Post("/", rt.handler.CreateInterview)
			r.Get("/", rt.handler.ListInterviews)
			r.Get("/{id}", rt.handler.GetInterview)
			r.Post("/{id}/start", rt.handler.StartInterview)
			r.Post("/{id}/end", rt.handler.EndInterview)
			r.Post("/{id}/analyze", rt.handler.AnalyzeInterview)
			r.Get("/{id}/report", rt.handler.GetInterviewReport)
			r.Get("/{id}/analysis", rt.handler.GetInterviewAnalysis)
			r.Post("/{id}/transcripts", rt.handler.AppendTranscript)
			r.Get("/{id}/transcripts", rt.handler.GetTranscript)
			r.Post("/{id}/skill-scores", rt.handler.AddSkillScores)
			r.Get("/{id}/skill-scores", rt.handler.GetSkillScores)
		})

		r.Route("/candidates", func(r chi.Router) {
			r.Post("/", rt.handler.CreateCandidate)
			r.Get("/", rt.handler.ListCandidates)
			r.Get("/{id}", rt.handler.GetCandidate)
			r.Put("/{id}", rt.handler.UpdateCandidate)
			r.Delete("/{id}", rt.handler.DeleteCandidate)
			r.Post("/{id}/resume", rt.handler.UploadResume)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", rt.handler.CreateCompany)
			r.Get("/{id}", rt.handler.GetCompany)
			r.Put("/{id}", rt.handler.UpdateCompany)
			r.Delete("/{id}", rt.handler.DeleteCompany)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", rt.handler.CreateJob)
			r.Get("/", rt.handler.ListJobs)
			r.Get("/{id}", rt.handler.GetJob)
			r.Put("/{id}", rt.handler.UpdateJob)
			r.Put("/{id}/status", rt.handler.UpdateJobStatus)
			r.Delete("/{id}", rt.handler.DeleteJob)
			r.Get("/{id}/skills", rt.handler.GetJobSkills)
			r.Post("/{id}/skills", rt.handler.AddJobSkills)
			r.Delete("/{id}/skills/{skill}", rt.handler.DeleteJobSkill)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/", rt.handler.CreateReport)
			r.Get("/{id}", rt.handler.GetReport)
			r.Post("/batch", rt.handler.BatchGetReports)
		})

		r.Route("/rag", func(r chi.Router) {
			r.Get("/context", rt.handler.GetRAGContext)
			r.Post("/sync", rt.handler.SyncRAGIndex)
		})

		r.Post("/mail/invites", rt.handler.SendInvite)
		r.Post("/auth/login", rt.handler.Login)
		r.Post("/auth/reset-password", rt.handler.ResetPassword)
	})

	return r
}

// corsMiddleware applies the configured CORS policy
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && rt.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) bool {
	for _, allowed := range rt.config.Server.CORSAllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
