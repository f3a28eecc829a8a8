package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"futurecustomer/internal/model"
)

// Observer receives one call per finished backend request
type Observer interface {
	ObserveGateway(op, outcome string, elapsed time.Duration)
}

// ClientConfig configures the HTTP backend client
type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
}

// Client talks to the simulation backend over HTTP
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
	observer    Observer
	logger      *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a backend client
func NewClient(cfg ClientConfig, observer Observer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		observer:    observer,
		logger:      logger.With("component", "gateway"),
	}
}

// CreateAgents handles GET /?agents=N
func (c *Client) CreateAgents(ctx context.Context, count int) ([]model.Agent, error) {
	const op = "create_agents"
	path := PathAgents + "?agents=" + url.QueryEscape(strconv.Itoa(count))

	resp, err := c.doRequest(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var agents []model.Agent
	if err := decodeJSON(resp.body, &agents); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if err := CheckAgents(agents, count); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return agents, nil
}

// SubmitQuestions handles POST /receive_user_csv
func (c *Client) SubmitQuestions(ctx context.Context, questions []string) (*model.QuestionResponses, error) {
	const op = "submit_questions"
	resp, err := c.doRequest(ctx, op, http.MethodPost, PathQuestions, QuestionsRequest{Questions: questions})
	if err != nil {
		return nil, err
	}

	var result model.QuestionResponses
	if err := decodeJSON(resp.body, &result); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if err := CheckDistributions(result.Distributions, len(questions)); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if err := CheckDistributions(result.FutureDistributions, len(questions)); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return &result, nil
}

// SubmitScenario handles POST /receive_future_scenario
func (c *Client) SubmitScenario(ctx context.Context, text string) (*model.ScenarioAck, error) {
	const op = "submit_scenario"
	resp, err := c.doRequest(ctx, op, http.MethodPost, PathScenario, ScenarioRequest{Scenario: text})
	if err != nil {
		return nil, err
	}

	var ack model.ScenarioAck
	if len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, &ack); err != nil {
			return nil, &DecodeError{Op: op, Err: err}
		}
	}
	return &ack, nil
}

// FetchExport handles POST /download_agent_response_csv. The backend's filename
// hint wins over the default archive name.
func (c *Client) FetchExport(ctx context.Context, questions []string) (*model.ExportDownload, error) {
	const op = "fetch_export"
	resp, err := c.doRequest(ctx, op, http.MethodPost, PathExport, QuestionsRequest{Questions: questions})
	if err != nil {
		return nil, err
	}
	if len(resp.body) == 0 {
		return nil, &DecodeError{Op: op, Err: errEmptyBody}
	}

	name := FilenameFromDisposition(resp.header.Get("Content-Disposition"))
	if name == "" {
		name = model.ArchiveFileName
	}
	return &model.ExportDownload{FileName: name, Data: resp.body}, nil
}

type response struct {
	header http.Header
	body   []byte
}

// doRequest performs the request, retrying transport failures and 429s with
// exponential backoff. Other non-2xx statuses fail immediately.
func (c *Client) doRequest(ctx context.Context, op, method, path string, payload any) (*response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	start := time.Now()
	resp, err := c.retry(ctx, op, method, path, body)
	if c.observer != nil {
		c.observer.ObserveGateway(op, outcome(err), time.Since(start))
	}
	return resp, err
}

func (c *Client) retry(ctx context.Context, op, method, path string, body []byte) (*response, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoffBase
			c.logger.Warn("retrying backend request", "op", op, "attempt", attempt+1, "max", c.maxRetries, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("create %s request: %w", op, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if sessionID := SessionFromContext(ctx); sessionID != "" {
			req.Header.Set(SessionHeader, sessionID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// not resent, the backend may already have acted on it
			c.logger.Error("backend request failed", "op", op, "attempt", attempt+1, "error", err)
			return nil, &NetworkError{Err: err}
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			c.logger.Error("read backend response failed", "op", op, "status", resp.StatusCode, "error", err)
			return nil, &NetworkError{Status: resp.StatusCode, Err: err}
		}

		// only 429 is retried
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &NetworkError{Status: resp.StatusCode, Body: string(respBody)}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Error("backend returned error status", "op", op, "status", resp.StatusCode, "body", truncate(respBody, 256))
			return nil, &NetworkError{Status: resp.StatusCode, Body: errorMessage(respBody)}
		}

		c.logger.Debug("backend request completed", "op", op, "status", resp.StatusCode, "bytes", len(respBody))
		return &response{header: resp.Header, body: respBody}, nil
	}

	c.logger.Error("backend retries exhausted", "op", op, "max", c.maxRetries, "error", lastErr)
	return nil, lastErr
}

func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, v)
}

func errorMessage(body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return truncate(body, 256)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func outcome(err error) string {
	var netErr *NetworkError
	var decErr *DecodeError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &decErr):
		return "decode_error"
	default:
		return "error"
	}
}
