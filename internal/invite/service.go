package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentloop/talentloop-server/internal/auth"
	"github.com/talentloop/talentloop-server/internal/mail"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// UserStore is the account surface the invite flow needs
type UserStore interface {
	GetByEmail(email string) (*sqlite.UserRecord, error)
	Create(rec *sqlite.UserRecord) (int64, error)
	UpdatePassword(id int64, passwordHash string, mustReset bool) error
}

// CandidateStore is the candidate surface the invite flow needs
type CandidateStore interface {
	GetByEmail(email string) (*sqlite.CandidateRecord, error)
	Create(rec *sqlite.CandidateRecord) (int64, error)
}

// JobStore resolves the posting the candidate is invited for
type JobStore interface {
	Get(id int64) (*sqlite.JobRecord, error)
}

// CompanyStore resolves the inviting company
type CompanyStore interface {
	Get(id int64) (*sqlite.CompanyRecord, error)
}

// Scheduler creates the interview session for the invite
type Scheduler interface {
	Create(ctx context.Context, candidateID, companyID, jobID int64, scheduledAt time.Time) (*sqlite.InterviewRecord, error)
}

// Request describes one invitation
type Request struct {
	CandidateName string    `json:"candidate_name"`
	Email         string    `json:"email"`
	JobID         int64     `json:"job_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// Result reports what the invite flow created
type Result struct {
	CandidateID int64 `json:"candidate_id"`
	InterviewID int64 `json:"interview_id"`
}

// Service runs the invitation flow: account upsert with temporary
// credentials, candidate and interview creation, invite email
type Service struct {
	users      UserStore
	candidates CandidateStore
	jobs       JobStore
	companies  CompanyStore
	scheduler  Scheduler
	mailer     *mail.Mailer
	logger     *logger.Logger
}

// NewService creates a new invite service
func NewService(
	users UserStore,
	candidates CandidateStore,
	jobs JobStore,
	companies CompanyStore,
	scheduler Scheduler,
	mailer *mail.Mailer,
	log *logger.Logger,
) *Service {
	return &Service{
		users:      users,
		candidates: candidates,
		jobs:       jobs,
		companies:  companies,
		scheduler:  scheduler,
		mailer:     mailer,
		logger:     log.Named("invite"),
	}
}

// Invite executes the full invitation flow for one candidate
func (s *Service) Invite(ctx context.Context, req Request) (*Result, error) {
	if req.Email == "" || req.CandidateName == "" {
		return nil, fmt.Errorf("candidate name and email are required")
	}

	job, err := s.jobs.Get(req.JobID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.Get(job.CompanyID)
	if err != nil {
		return nil, err
	}

	tempPassword, err := auth.GenerateTempPassword(12)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	// A re-invited candidate gets fresh temporary credentials.
	user, err := s.users.GetByEmail(req.Email)
	switch {
	case err == nil:
		if err := s.users.UpdatePassword(user.ID, hash, true); err != nil {
			return nil, fmt.Errorf("failed to refresh credentials: %w", err)
		}
	case errors.Is(err, sqlite.ErrNotFound):
		if _, err := s.users.Create(&sqlite.UserRecord{
			Name:              req.CandidateName,
			Email:             req.Email,
			PasswordHash:      hash,
			Role:              "candidate",
			MustResetPassword: true,
		}); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	default:
		return nil, err
	}

	candidate, err := s.candidates.GetByEmail(req.Email)
	if errors.Is(err, sqlite.ErrNotFound) {
		candidate = &sqlite.CandidateRecord{
			Name:      req.CandidateName,
			Email:     req.Email,
			JobID:     req.JobID,
			CompanyID: job.CompanyID,
		}
		if _, err := s.candidates.Create(candidate); err != nil {
			return nil, fmt.Errorf("failed to create candidate: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	interview, err := s.scheduler.Create(ctx, candidate.ID, job.CompanyID, req.JobID, req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendInvite(mail.Invite{
		To:            req.Email,
		CandidateName: req.CandidateName,
		JobTitle:      job.Title,
		CompanyName:   company.Name,
		ScheduledAt:   req.ScheduledAt,
		TempPassword:  tempPassword,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Candidate invited",
		logger.String("email", req.Email),
		logger.Int64("job_id", req.JobID),
		logger.Int64("interview_id", interview.ID))

	return &Result{CandidateID: candidate.ID, InterviewID: interview.ID}, nil
}
