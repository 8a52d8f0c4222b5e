package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

func TestStartBotSendsConfigAndReturnsURL(t *testing.T) {
	var gotPath string
	var gotConfig relay.BotConfig
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotConfig))
		json.NewEncoder(w).Encode(StartResult{BotURL: "wss://bots.example.com/42", Status: "running"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNop())
	result, err := client.StartBot(context.Background(), 42, relay.BotConfig{
		Language:       "en",
		JobPosition:    "Backend Engineer",
		RequiredSkills: []string{"Go", "SQL"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/bots/42/start", gotPath)
	assert.Equal(t, "Backend Engineer", gotConfig.JobPosition)
	assert.Equal(t, "wss://bots.example.com/42", result.BotURL)
}

func TestStartBotNonOKStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "runner overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNop())
	_, err := client.StartBot(context.Background(), 42, relay.BotConfig{})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "start", ue.Op)
	assert.Contains(t, ue.Error(), "503")
}

func TestStartBotConnectionFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	_, err := client.StartBot(context.Background(), 1, relay.BotConfig{})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Error(t, errors.Unwrap(ue))
}

func TestStopBot(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNop())
	stopped, err := client.StopBot(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, stopped)
	assert.Equal(t, "/bots/7/stop", gotPath)
}

func TestStopBotNonOKStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such bot", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNop())
	stopped, err := client.StopBot(context.Background(), 7)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.False(t, stopped)
	assert.Equal(t, "stop", ue.Op)
}
