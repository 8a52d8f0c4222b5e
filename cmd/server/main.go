package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talentloop/talentloop-server/internal/ai"
	"github.com/talentloop/talentloop-server/internal/ai/gemini"
	"github.com/talentloop/talentloop-server/internal/analysis"
	"github.com/talentloop/talentloop-server/internal/api"
	"github.com/talentloop/talentloop-server/internal/auth"
	"github.com/talentloop/talentloop-server/internal/bot"
	"github.com/talentloop/talentloop-server/internal/config"
	"github.com/talentloop/talentloop-server/internal/events"
	"github.com/talentloop/talentloop-server/internal/interview"
	"github.com/talentloop/talentloop-server/internal/invite"
	"github.com/talentloop/talentloop-server/internal/mail"
	"github.com/talentloop/talentloop-server/internal/rag"
	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting TalentLoop server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Ensure the database directory exists
	dbDir := filepath.Dir(cfg.Storage.SQLitePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Error("Failed to create database directory", logger.Error(err), logger.String("path", dbDir))
		os.Exit(1)
	}

	// Create SQLite storage
	db, err := sqlite.Open(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to open SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Using SQLite storage", logger.String("path", cfg.Storage.SQLitePath))

	interviewStorage := sqlite.NewInterviewStorage(db, log)
	candidateStorage := sqlite.NewCandidateStorage(db, log)
	companyStorage := sqlite.NewCompanyStorage(db, log)
	jobStorage := sqlite.NewJobStorage(db, log)
	reportStorage := sqlite.NewReportStorage(db, log)
	transcriptStorage := sqlite.NewTranscriptStorage(db, log)
	contextStorage := sqlite.NewContextStorage(db, log)
	userStorage := sqlite.NewUserStorage(db, log)

	// Create the bot relay channel
	relayRegistry := relay.NewRegistry(log)
	relayTranslator := relay.NewTranslator(relayRegistry, interviewStorage, log)
	relayServer := relay.NewServer(relayRegistry, relayTranslator, log)

	// Create the bot runner client
	botClient := bot.NewClient(
		cfg.Bot.BaseURL,
		time.Duration(cfg.Bot.RequestTimeoutSecs)*time.Second,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the Gemini client (chat for analysis, embeddings for RAG)
	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbeddingModel, log)
	if err != nil {
		log.Error("Failed to create Gemini client", logger.Error(err))
		os.Exit(1)
	}
	chatConfig := ai.ChatConfig{
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		MaxTokens:   cfg.Gemini.MaxOutputTokens,
	}

	// Create the optional lifecycle event publisher
	var publisher *events.Publisher
	if cfg.Events.Enabled {
		publisher, err = events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
		if err != nil {
			log.Error("Failed to connect event publisher", logger.Error(err))
			os.Exit(1)
		}
		defer publisher.Close()
		log.Info("Publishing lifecycle events", logger.String("exchange", cfg.Events.Exchange))
	} else {
		log.Info("Lifecycle event publishing disabled in configuration")
	}

	// Create domain services
	var eventPublisher interview.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	interviewService := interview.NewService(interviewStorage, jobStorage, botClient, relayTranslator, eventPublisher, log)
	analysisService := analysis.NewService(geminiClient, chatConfig, interviewStorage, transcriptStorage, jobStorage, reportStorage, log)
	ragService := rag.NewService(geminiClient, contextStorage, jobStorage, companyStorage, candidateStorage, interviewStorage, cfg.RAG.DefaultLimit, log)

	jwtManager := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		time.Duration(cfg.Auth.TokenTTLMinute)*time.Minute,
	)
	authService := auth.NewService(userStorage, jwtManager, log)

	// Create the invite mailer. Without an SMTP host the mock transport
	// keeps the invite flow working in development.
	var transport mail.Transporter
	if cfg.Mail.SMTPHost != "" {
		transport = mail.NewSMTP(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPass)
	} else {
		log.Warn("No SMTP host configured, invite mail will not leave the process")
		transport = mail.NewMock()
	}
	mailer := mail.New(cfg.Mail.Sender, cfg.Mail.FrontendBaseURL, transport, log)

	inviteService := invite.NewService(userStorage, candidateStorage, jobStorage, companyStorage, interviewService, mailer, log)

	// Create API router
	router := api.NewRouter(
		interviewService,
		analysisService,
		ragService,
		authService,
		inviteService,
		relayServer,
		relayRegistry,
		candidateStorage,
		companyStorage,
		jobStorage,
		reportStorage,
		transcriptStorage,
		cfg,
		log,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	// Cancel the main context
	cancel()

	// Shutdown the HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	} else {
		log.Info("HTTP server shutdown complete")
	}

	log.Info("Server fully stopped")
}
