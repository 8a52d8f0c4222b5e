package relay

import (
	"sync"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// BotConn is the transmit side of the duplex channel to the bot process
type BotConn interface {
	WriteMessage(data []byte) error
}

// Registry owns the single active bot connection and the table of start
// messages buffered while no connection exists. The handle and the pending
// table are guarded by one mutex and always mutated as a unit.
type Registry struct {
	mu      sync.Mutex
	conn    BotConn
	pending map[int64]Envelope
	logger  *logger.Logger
}

// NewRegistry creates an empty connection registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		pending: make(map[int64]Envelope),
		logger:  log.Named("relay-registry"),
	}
}

// Register installs conn as the sole active handle, replacing any prior one,
// and flushes every buffered start message. Each pending entry is forwarded
// exactly once and removed; the table is empty when Register returns. Flush
// order across entries is unspecified. A flush send failure is logged and the
// entry is still dropped: delivery is best-effort.
func (r *Registry) Register(conn BotConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		r.logger.Warn("Replacing existing bot connection")
	}
	r.conn = conn

	for id, env := range r.pending {
		if err := conn.WriteMessage(env.Frame); err != nil {
			r.logger.Error("Failed to flush pending start message",
				logger.Int64("interview_id", id),
				logger.Error(err))
		} else {
			r.logger.Info("Flushed pending start message",
				logger.Int64("interview_id", id))
		}
		delete(r.pending, id)
	}
}

// Unregister clears the active handle. When conn is non-nil the handle is
// only cleared if it is still the active one, so a stale connection's exit
// cannot evict its replacement. Passing nil clears unconditionally.
func (r *Registry) Unregister(conn BotConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn == nil || r.conn == conn {
		r.conn = nil
	}
}

// Forward transmits the envelope over the active handle. Send errors are not
// retried and propagate to the caller. With no handle, start messages are
// buffered last-write-wins per interview id; every other type is dropped.
func (r *Registry) Forward(env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return r.conn.WriteMessage(env.Frame)
	}

	if env.Type == TypeStartInterview {
		r.pending[env.InterviewID] = env
		r.logger.Info("Bot not connected, buffered start message",
			logger.Int64("interview_id", env.InterviewID))
		return nil
	}

	r.logger.Debug("Bot not connected, dropping message",
		logger.String("type", env.Type),
		logger.Int64("interview_id", env.InterviewID))
	return nil
}

// Connected reports whether a bot connection is currently active
func (r *Registry) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// PendingCount returns the number of buffered start messages
func (r *Registry) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
