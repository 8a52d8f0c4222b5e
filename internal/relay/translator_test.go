package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// fakeStatusStore records status updates and reports unknown ids
type fakeStatusStore struct {
	known   map[int64]bool
	updates map[int64]string
}

func newFakeStatusStore(ids ...int64) *fakeStatusStore {
	known := make(map[int64]bool)
	for _, id := range ids {
		known[id] = true
	}
	return &fakeStatusStore{known: known, updates: make(map[int64]string)}
}

func (s *fakeStatusStore) UpdateStatus(id int64, status string) error {
	if !s.known[id] {
		return sqlite.ErrNotFound
	}
	s.updates[id] = status
	return nil
}

func newTestTranslator(store StatusStore) (*Translator, *Registry) {
	registry := NewRegistry(logger.NewNop())
	return NewTranslator(registry, store, logger.NewNop()), registry
}

func TestNotifyStartFrameShape(t *testing.T) {
	store := newFakeStatusStore()
	translator, registry := newTestTranslator(store)

	conn := &fakeConn{}
	registry.Register(conn)

	err := translator.NotifyStart(11, 7, BotConfig{
		JobPosition:    "Backend Engineer",
		RequiredSkills: []string{"go", "sql"},
		Language:       "en",
	})
	require.NoError(t, err)
	require.Len(t, conn.frames, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(conn.frames[0], &decoded))
	assert.Equal(t, "start_interview", decoded["type"])
	assert.Equal(t, float64(11), decoded["interview_id"])
	assert.Equal(t, float64(7), decoded["candidate_id"])

	cfg, ok := decoded["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", cfg["job_position"])
}

func TestNotifyStartBuffersWhileDisconnected(t *testing.T) {
	translator, registry := newTestTranslator(newFakeStatusStore())

	require.NoError(t, translator.NotifyStart(3, 9, BotConfig{}))
	assert.Equal(t, 1, registry.PendingCount())
}

func TestClientDisconnectedMarksInterviewCompleted(t *testing.T) {
	store := newFakeStatusStore(42)
	translator, _ := newTestTranslator(store)

	translator.HandleFrame([]byte(`{"type":"client_disconnected","interview_id":42}`))

	assert.Equal(t, sqlite.StatusCompleted, store.updates[42])
}

func TestClientDisconnectedUnknownInterviewIsNoOp(t *testing.T) {
	store := newFakeStatusStore()
	translator, _ := newTestTranslator(store)

	// Must not panic or record anything.
	translator.HandleFrame([]byte(`{"type":"client_disconnected","interview_id":42}`))

	assert.Empty(t, store.updates)
}

func TestClientConnectedHasNoStateEffect(t *testing.T) {
	store := newFakeStatusStore(7)
	translator, _ := newTestTranslator(store)

	translator.HandleFrame([]byte(`{"type":"client_connected","interview_id":7}`))

	assert.Empty(t, store.updates)
}

func TestUnknownTagIgnored(t *testing.T) {
	store := newFakeStatusStore(7)
	translator, _ := newTestTranslator(store)

	translator.HandleFrame([]byte(`{"type":"heartbeat","interview_id":7}`))

	assert.Empty(t, store.updates)
}

func TestMalformedFrameRejected(t *testing.T) {
	store := newFakeStatusStore(7)
	translator, _ := newTestTranslator(store)

	translator.HandleFrame([]byte(`not json`))
	translator.HandleFrame([]byte(`{"interview_id":7}`))

	assert.Empty(t, store.updates)
}

func TestDecodeInboundRequiresType(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"interview_id":1}`))
	assert.Error(t, err)

	msg, err := DecodeInbound([]byte(`{"type":"client_connected","interview_id":1}`))
	require.NoError(t, err)
	assert.Equal(t, TypeClientConnected, msg.Type)
	assert.Equal(t, int64(1), msg.InterviewID)
}
