// Package remote talks to the decision service that runs auctions and returns reports.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/taskbounty/internal/domain/report"
	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/pkg/logger"
	"github.com/okian/taskbounty/pkg/metrics"
)

// Paths served by the decision service.
const (
	PathDemo = "/demo/run-ui"
	PathRun  = "/run-ui"
)

// Operation labels for logs and metrics.
const (
	opDemo = "demo"
	opRun  = "run"
)

const headerRequestID = "X-Request-ID"

// Client calls the decision service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// RunDemo requests a seeded demo auction.
func (c *Client) RunDemo(ctx context.Context, seed, rounds int) (*report.Report, error) {
	q := url.Values{}
	q.Set("seed", strconv.Itoa(seed))
	q.Set("rounds", strconv.Itoa(rounds))
	return c.post(ctx, opDemo, PathDemo+"?"+q.Encode(), []byte("{}"))
}

// RunTask submits a task and returns the resulting report.
func (c *Client) RunTask(ctx context.Context, req request.RunRequest) (*report.Report, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeRequest, err)
	}
	return c.post(ctx, opRun, PathRun, body)
}

func (c *Client) post(ctx context.Context, op, path string, body []byte) (*report.Report, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID, ok := logger.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, requestID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)

	start := time.Now()
	rep, outcome, err := c.do(req)
	elapsed := time.Since(start)

	metrics.RecordRemoteCall(op, outcome)
	metrics.RecordRemoteCallDuration(op, float64(elapsed.Milliseconds()))

	if err != nil {
		c.logger.Warn(ctx, "remote call failed",
			logger.String("operation", op),
			logger.String("outcome", outcome),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return nil, err
	}
	c.logger.Debug(ctx, "remote call succeeded",
		logger.String("operation", op),
		logger.Duration("elapsed", elapsed),
		logger.Int("bids", len(rep.Bids)))
	return rep, nil
}

func (c *Client) do(req *http.Request) (*report.Report, string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, metrics.OutcomeTransport, transportError(err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, metrics.OutcomeTransport, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, metrics.OutcomeHTTPError, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	rep, err := report.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, metrics.OutcomeDecode, fmt.Errorf("%w: %w", ErrDecodeReport, err)
	}
	return rep, metrics.OutcomeSuccess, nil
}

// transportError unwraps *url.Error so the message is the transport's own.
func transportError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
