package relay

import (
	"errors"

	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// StatusStore is the slice of the interview store the translator mutates
// in response to inbound bot events
type StatusStore interface {
	UpdateStatus(id int64, status string) error
}

// Translator maps backend lifecycle events to outbound frames and inbound
// bot frames to backend side effects
type Translator struct {
	registry *Registry
	store    StatusStore
	logger   *logger.Logger
}

// NewTranslator creates a new event translator
func NewTranslator(registry *Registry, store StatusStore, log *logger.Logger) *Translator {
	return &Translator{
		registry: registry,
		store:    store,
		logger:   log.Named("relay-translator"),
	}
}

// NotifyStart builds a start_interview frame and forwards it to the bot.
// With no live connection the frame is buffered by the registry.
func (t *Translator) NotifyStart(interviewID, candidateID int64, cfg BotConfig) error {
	env, err := NewStartEnvelope(StartInterview{
		InterviewID: interviewID,
		CandidateID: candidateID,
		Config:      cfg,
	})
	if err != nil {
		return err
	}
	return t.registry.Forward(env)
}

// HandleFrame dispatches one inbound frame from the bot process.
// Malformed frames and unknown tags never propagate an error upward;
// a failed send or update is logged and the channel keeps running.
func (t *Translator) HandleFrame(frame []byte) {
	msg, err := DecodeInbound(frame)
	if err != nil {
		t.logger.Error("Rejected malformed inbound frame", logger.Error(err))
		return
	}

	switch msg.Type {
	case TypeClientConnected:
		t.logger.Info("Client connected to interview",
			logger.Int64("interview_id", msg.InterviewID))

	case TypeClientDisconnected:
		t.logger.Info("Client disconnected from interview",
			logger.Int64("interview_id", msg.InterviewID))
		if err := t.store.UpdateStatus(msg.InterviewID, sqlite.StatusCompleted); err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				t.logger.Debug("Disconnect for unknown interview, ignoring",
					logger.Int64("interview_id", msg.InterviewID))
				return
			}
			t.logger.Error("Failed to mark interview completed",
				logger.Int64("interview_id", msg.InterviewID),
				logger.Error(err))
		}

	default:
		t.logger.Debug("Ignoring inbound frame with unknown type",
			logger.String("type", msg.Type))
	}
}
