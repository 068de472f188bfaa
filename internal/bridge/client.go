package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/italolelis/spotdl_exporter/internal/logctx"
	"github.com/italolelis/spotdl_exporter/internal/notifier"
	"github.com/italolelis/spotdl_exporter/internal/telemetry"
)

// ExecutePath is the executor endpoint receiving commands.
const ExecutePath = "/execute"

// FailureNotification is shown to the user whenever a command cannot be executed.
const FailureNotification = "Error: Local server unreachable or command failed. Check console."

const maxErrorBody = 64 * 1024

// Executor runs one command on the local executor service.
type Executor interface {
	Execute(ctx context.Context, command string) (*Response, error)
}

// Response is a successful executor answer. The payload is kept verbatim and
// not interpreted.
type Response struct {
	StatusCode int
	Payload    json.RawMessage
}

type executeRequest struct {
	Command string `json:"command"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Client is the HTTP command bridge. It never retries: every Execute call is a
// single POST and its outcome is final.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	notifier   notifier.Notifier
}

// NewClient creates a bridge to the executor at baseURL. httpClient may be nil.
// No application level timeout is applied; the transport decides when to give up.
func NewClient(baseURL string, n notifier.Notifier, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		notifier:   n,
	}
}

// Ensure Client implements Executor
var _ Executor = (*Client)(nil)

// Execute posts command to the executor. Failures are *UnreachableError or
// *ExecutorError; in both cases the user is notified before the error is returned.
func (c *Client) Execute(ctx context.Context, command string) (*Response, error) {
	logger := logctx.LoggerFromContext(ctx)

	resp, err := c.execute(ctx, command)
	if err != nil {
		logger.Error("failed to execute command", "err", err)

		if c.notifier != nil {
			if notifyErr := c.notifier.Notify(FailureNotification); notifyErr != nil {
				logger.Error("failed to send notification", "err", notifyErr)
			}
		}

		return nil, err
	}

	logger.Debug("command executed", "status", resp.StatusCode)

	return resp, nil
}

func (c *Client) execute(ctx context.Context, command string) (*Response, error) {
	url := c.BaseURL + ExecutePath

	body, err := json.Marshal(executeRequest{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if id := telemetry.GetRequestID(ctx); id != "" {
		req.Header.Set(telemetry.RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnreachableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		execErr := &ExecutorError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}

		var eb errorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&eb); err == nil {
			execErr.Message = eb.Message
		}

		return nil, execErr
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnreachableError{URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return &Response{StatusCode: resp.StatusCode, Payload: payload}, nil
}
