package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentloop/talentloop-server/internal/bot"
	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// fakeSessionStore is an in-memory SessionStore
type fakeSessionStore struct {
	records map[int64]*sqlite.InterviewRecord
	nextID  int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{records: make(map[int64]*sqlite.InterviewRecord), nextID: 1}
}

func (s *fakeSessionStore) Create(rec *sqlite.InterviewRecord) (int64, error) {
	rec.ID = s.nextID
	s.nextID++
	clone := *rec
	s.records[rec.ID] = &clone
	return rec.ID, nil
}

func (s *fakeSessionStore) Get(id int64) (*sqlite.InterviewRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *fakeSessionStore) List(candidateID *int64) ([]*sqlite.InterviewRecord, error) {
	var out []*sqlite.InterviewRecord
	for _, rec := range s.records {
		if candidateID != nil && rec.CandidateID != *candidateID {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	return out, nil
}

func (s *fakeSessionStore) UpdateStatus(id int64, status string) error {
	rec, ok := s.records[id]
	if !ok {
		return sqlite.ErrNotFound
	}
	rec.Status = status
	return nil
}

func (s *fakeSessionStore) UpdateStarted(id int64, status, botURL string) error {
	rec, ok := s.records[id]
	if !ok {
		return sqlite.ErrNotFound
	}
	rec.Status = status
	rec.BotURL = botURL
	return nil
}

// fakeJobStore serves a single job
type fakeJobStore struct {
	job    *sqlite.JobRecord
	skills []string
}

func (s *fakeJobStore) Get(id int64) (*sqlite.JobRecord, error) {
	if s.job == nil || s.job.ID != id {
		return nil, sqlite.ErrNotFound
	}
	return s.job, nil
}

func (s *fakeJobStore) GetSkills(id int64) ([]string, error) {
	return s.skills, nil
}

// fakeLauncher records start/stop calls and can be told to fail
type fakeLauncher struct {
	startErr error
	started  []int64
	stopped  []int64
	botURL   string
}

func (l *fakeLauncher) StartBot(ctx context.Context, interviewID int64, cfg relay.BotConfig) (*bot.StartResult, error) {
	if l.startErr != nil {
		return nil, l.startErr
	}
	l.started = append(l.started, interviewID)
	url := l.botURL
	if url == "" {
		url = "https://meet.example.com/room-1"
	}
	return &bot.StartResult{BotURL: url, Status: "running"}, nil
}

func (l *fakeLauncher) StopBot(ctx context.Context, interviewID int64) (bool, error) {
	l.stopped = append(l.stopped, interviewID)
	return true, nil
}

// fakeNotifier records NotifyStart calls
type fakeNotifier struct {
	notified []int64
	configs  []relay.BotConfig
	err      error
}

func (n *fakeNotifier) NotifyStart(interviewID, candidateID int64, cfg relay.BotConfig) error {
	n.notified = append(n.notified, interviewID)
	n.configs = append(n.configs, cfg)
	return n.err
}

func newTestService(store *fakeSessionStore, jobs *fakeJobStore, launcher *fakeLauncher, notifier *fakeNotifier) *Service {
	if jobs == nil {
		jobs = &fakeJobStore{}
	}
	return NewService(store, jobs, launcher, notifier, nil, logger.NewNop())
}

func createPending(t *testing.T, svc *Service) *sqlite.InterviewRecord {
	t.Helper()
	rec, err := svc.Create(context.Background(), 7, 2, 3, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, sqlite.StatusPending, rec.Status)
	return rec
}

func TestCreateStartsPending(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestService(store, nil, &fakeLauncher{}, &fakeNotifier{})

	rec := createPending(t, svc)

	stored, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusPending, stored.Status)
	assert.Empty(t, stored.BotURL)
}

func TestStartTransitionsAndStoresBotURL(t *testing.T) {
	store := newFakeSessionStore()
	launcher := &fakeLauncher{botURL: "https://meet.example.com/abc"}
	notifier := &fakeNotifier{}
	jobs := &fakeJobStore{
		job:    &sqlite.JobRecord{ID: 3, Title: "Backend Engineer"},
		skills: []string{"go", "sql"},
	}
	svc := newTestService(store, jobs, launcher, notifier)

	rec := createPending(t, svc)

	started, err := svc.Start(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusInProgress, started.Status)
	assert.Equal(t, "https://meet.example.com/abc", started.BotURL)

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, rec.ID, notifier.notified[0])
	assert.Equal(t, "Backend Engineer", notifier.configs[0].JobPosition)
	assert.Equal(t, []string{"go", "sql"}, notifier.configs[0].RequiredSkills)
}

func TestStartUnknownInterviewHasNoSideEffects(t *testing.T) {
	store := newFakeSessionStore()
	launcher := &fakeLauncher{}
	notifier := &fakeNotifier{}
	svc := newTestService(store, nil, launcher, notifier)

	_, err := svc.Start(context.Background(), 999)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
	assert.Empty(t, launcher.started)
	assert.Empty(t, notifier.notified)
}

func TestStartBotFailureRevertsStatus(t *testing.T) {
	store := newFakeSessionStore()
	upstream := &bot.UpstreamError{Op: "start", Err: errors.New("connection refused")}
	launcher := &fakeLauncher{startErr: upstream}
	notifier := &fakeNotifier{}
	svc := newTestService(store, nil, launcher, notifier)

	rec := createPending(t, svc)

	_, err := svc.Start(context.Background(), rec.ID)
	require.Error(t, err)

	var ue *bot.UpstreamError
	assert.ErrorAs(t, err, &ue)

	stored, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusPending, stored.Status)
	assert.Empty(t, stored.BotURL)
	assert.Empty(t, notifier.notified)
}

func TestStartCompletedInterviewRejected(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestService(store, nil, &fakeLauncher{}, &fakeNotifier{})

	rec := createPending(t, svc)
	_, err := svc.End(context.Background(), rec.ID)
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestStartSucceedsEvenWhenNotifyFails(t *testing.T) {
	store := newFakeSessionStore()
	notifier := &fakeNotifier{err: errors.New("no bot connection")}
	svc := newTestService(store, nil, &fakeLauncher{}, notifier)

	rec := createPending(t, svc)

	started, err := svc.Start(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusInProgress, started.Status)
}

func TestEndIsTerminalAndIdempotent(t *testing.T) {
	store := newFakeSessionStore()
	launcher := &fakeLauncher{}
	svc := newTestService(store, nil, launcher, &fakeNotifier{})

	rec := createPending(t, svc)

	ended, err := svc.End(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusCompleted, ended.Status)

	// Ending again stays completed.
	ended, err = svc.End(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusCompleted, ended.Status)

	assert.Len(t, launcher.stopped, 2)
}

func TestEndUnknownInterviewFails(t *testing.T) {
	svc := newTestService(newFakeSessionStore(), nil, &fakeLauncher{}, &fakeNotifier{})

	_, err := svc.End(context.Background(), 404)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestListFiltersByCandidate(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestService(store, nil, &fakeLauncher{}, &fakeNotifier{})

	_, err := svc.Create(context.Background(), 1, 2, 3, time.Now())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 2, 2, 3, time.Now())
	require.NoError(t, err)

	all, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	candidateID := int64(1)
	filtered, err := svc.List(context.Background(), &candidateID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, candidateID, filtered[0].CandidateID)
}
