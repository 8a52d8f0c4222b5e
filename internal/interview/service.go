package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/internal/bot"
	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// ErrAlreadyCompleted is returned when starting an interview that has
// already reached its terminal state
var ErrAlreadyCompleted = errors.New("interview already completed")

// SessionStore is the interview persistence surface the service needs
type SessionStore interface {
	Create(rec *sqlite.InterviewRecord) (int64, error)
	Get(id int64) (*sqlite.InterviewRecord, error)
	List(candidateID *int64) ([]*sqlite.InterviewRecord, error)
	UpdateStatus(id int64, status string) error
	UpdateStarted(id int64, status, botURL string) error
}

// JobStore provides the job details used to build the bot configuration
type JobStore interface {
	Get(id int64) (*sqlite.JobRecord, error)
	GetSkills(id int64) ([]string, error)
}

// Launcher is the external bot-lifecycle collaborator
type Launcher interface {
	StartBot(ctx context.Context, interviewID int64, cfg relay.BotConfig) (*bot.StartResult, error)
	StopBot(ctx context.Context, interviewID int64) (bool, error)
}

// Notifier pushes lifecycle events toward the bot process
type Notifier interface {
	NotifyStart(interviewID, candidateID int64, cfg relay.BotConfig) error
}

// EventPublisher receives lifecycle transitions for downstream consumers.
// Implementations must not block the lifecycle on failure.
type EventPublisher interface {
	Publish(event string, payload any) error
}

// Service owns the interview session lifecycle:
// pending -> in_progress -> completed
type Service struct {
	store     SessionStore
	jobs      JobStore
	launcher  Launcher
	notifier  Notifier
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new interview lifecycle service. publisher may be nil.
func NewService(store SessionStore, jobs JobStore, launcher Launcher, notifier Notifier, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		jobs:      jobs,
		launcher:  launcher,
		notifier:  notifier,
		publisher: publisher,
		logger:    log.Named("interview-service"),
	}
}

// Create records a new interview session in state pending
func (s *Service) Create(ctx context.Context, candidateID, companyID, jobID int64, scheduledAt time.Time) (*sqlite.InterviewRecord, error) {
	rec := &sqlite.InterviewRecord{
		CandidateID: candidateID,
		CompanyID:   companyID,
		JobID:       jobID,
		Status:      sqlite.StatusPending,
		ScheduledAt: scheduledAt,
	}

	if _, err := s.store.Create(rec); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	s.logger.Info("Created interview session",
		logger.Int64("interview_id", rec.ID),
		logger.Int64("candidate_id", candidateID),
		logger.Int64("job_id", jobID))

	s.publish("created", rec)
	return rec, nil
}

// Start transitions the session to in_progress, asks the bot runner for a
// connection and notifies the bot process. An unknown id fails with no side
// effects. If the runner call fails the status is reverted to its prior
// value so the session is never left in_progress without a bot.
func (s *Service) Start(ctx context.Context, id int64) (*sqlite.InterviewRecord, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status == sqlite.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	previousStatus := rec.Status
	if err := s.store.UpdateStatus(id, sqlite.StatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to transition interview %d: %w", id, err)
	}

	cfg := s.botConfig(rec.JobID)

	result, err := s.launcher.StartBot(ctx, id, cfg)
	if err != nil {
		if revertErr := s.store.UpdateStatus(id, previousStatus); revertErr != nil {
			s.logger.Error("Failed to revert interview status after bot start failure",
				logger.Int64("interview_id", id),
				logger.Error(revertErr))
		}
		return nil, err
	}

	if err := s.store.UpdateStarted(id, sqlite.StatusInProgress, result.BotURL); err != nil {
		return nil, fmt.Errorf("failed to store bot URL for interview %d: %w", id, err)
	}

	// Delivery toward the bot process is best-effort; a failed or buffered
	// notification never fails the start operation.
	if err := s.notifier.NotifyStart(id, rec.CandidateID, cfg); err != nil {
		s.logger.Error("Failed to notify bot of interview start",
			logger.Int64("interview_id", id),
			logger.Error(err))
	}

	rec, err = s.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Started interview session",
		logger.Int64("interview_id", id),
		logger.String("bot_url", rec.BotURL))

	s.publish("started", rec)
	return rec, nil
}

// End transitions the session to completed. The transition is terminal and
// idempotent: ending an already-completed or never-started session is
// allowed. Bot teardown is best-effort.
func (s *Service) End(ctx context.Context, id int64) (*sqlite.InterviewRecord, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(id, sqlite.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete interview %d: %w", id, err)
	}

	if _, err := s.launcher.StopBot(ctx, id); err != nil {
		s.logger.Error("Failed to stop bot",
			logger.Int64("interview_id", id),
			logger.Error(err))
	}

	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ended interview session", logger.Int64("interview_id", id))

	s.publish("completed", rec)
	return rec, nil
}

// Get returns the session with the given id
func (s *Service) Get(ctx context.Context, id int64) (*sqlite.InterviewRecord, error) {
	return s.store.Get(id)
}

// List returns all sessions, optionally filtered by candidate
func (s *Service) List(ctx context.Context, candidateID *int64) ([]*sqlite.InterviewRecord, error) {
	return s.store.List(candidateID)
}

// botConfig assembles the bot customization from the job posting. A missing
// job is not fatal: the bot falls back to a generic interview.
func (s *Service) botConfig(jobID int64) relay.BotConfig {
	cfg := relay.BotConfig{Language: "en"}

	job, err := s.jobs.Get(jobID)
	if err != nil {
		s.logger.Warn("Job not found for interview, using generic bot config",
			logger.Int64("job_id", jobID),
			logger.Error(err))
		return cfg
	}
	cfg.JobPosition = job.Title

	skills, err := s.jobs.GetSkills(jobID)
	if err != nil {
		s.logger.Warn("Failed to load job skills",
			logger.Int64("job_id", jobID),
			logger.Error(err))
		return cfg
	}
	cfg.RequiredSkills = skills

	return cfg
}

func (s *Service) publish(event string, rec *sqlite.InterviewRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event, rec); err != nil {
		s.logger.Error("Failed to publish lifecycle event",
			logger.String("event", event),
			logger.Int64("interview_id", rec.ID),
			logger.Error(err))
	}
}
