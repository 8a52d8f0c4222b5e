package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talentloop/talentloop-server/internal/relay"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// UpstreamError wraps a failed call to the bot runner so callers can
// distinguish collaborator failures from local ones
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bot runner %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StartResult is the bot runner's response to a start request
type StartResult struct {
	BotURL string `json:"bot_url"`
	Status string `json:"status"`
}

// Client talks to the external bot runner process over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new bot runner client
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("bot-client"),
	}
}

// StartBot asks the runner to prepare a bot for the given interview and
// returns the connection URL clients should join
func (c *Client) StartBot(ctx context.Context, interviewID int64, cfg relay.BotConfig) (*StartResult, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, &UpstreamError{Op: "start", Err: err}
	}

	url := fmt.Sprintf("%s/bots/%d/start", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, &UpstreamError{Op: "start", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: "start", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{
			Op:  "start",
			Err: fmt.Errorf("unexpected status %s: %s", resp.Status, string(respBody)),
		}
	}

	var result StartResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &UpstreamError{Op: "start", Err: err}
	}

	c.logger.Info("Bot started",
		logger.Int64("interview_id", interviewID),
		logger.String("bot_url", result.BotURL))

	return &result, nil
}

// StopBot asks the runner to tear down the bot for the given interview
func (c *Client) StopBot(ctx context.Context, interviewID int64) (bool, error) {
	url := fmt.Sprintf("%s/bots/%d/stop", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return false, &UpstreamError{Op: "stop", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &UpstreamError{Op: "stop", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return false, &UpstreamError{
			Op:  "stop",
			Err: fmt.Errorf("unexpected status %s: %s", resp.Status, string(respBody)),
		}
	}

	c.logger.Info("Bot stopped", logger.Int64("interview_id", interviewID))
	return true, nil
}
