// Package collab holds the contract shared by the data collaborators: small
// clients that fetch records from public endpoints for use alongside
// generated programs.
package collab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Alia5/studiogen/internal/codegen/common"
	"github.com/Alia5/studiogen/internal/log"
)

// Record is one flat result row.
type Record map[string]any

// Query selects records from a Source. Params are source specific.
type Query struct {
	Target string
	Params map[string]string
	Limit  int
	Offset int
}

// Source fetches records.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]Record, error)
}

// Error is returned by every collaborator. Transient errors may succeed on
// a later attempt; the clients themselves never retry.
type Error struct {
	Op        string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal wraps err as a non-retryable failure of op.
func Fatal(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// Transient wraps err as a retryable failure of op.
func Transient(op string, err error) *Error {
	return &Error{Op: op, Transient: true, Err: err}
}

// IsTransient reports whether err carries a transient collab.Error.
func IsTransient(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Transient
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "unexpected status " + e.Status
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// MaxBody caps how much of a response body is read.
const MaxBody = 16 << 20

const errorBodySnippet = 512

// Client performs GET requests for the collaborators and classifies their
// failures.
type Client struct {
	HTTP   *http.Client
	Logger *slog.Logger
	Raw    log.RawLogger
}

// NewClient builds a Client with a request timeout. A nil raw logger drops
// payloads.
func NewClient(logger *slog.Logger, raw log.RawLogger, timeout time.Duration) *Client {
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Client{
		HTTP:   &http.Client{Timeout: timeout},
		Logger: logger,
		Raw:    raw,
	}
}

// Get fetches url and returns the response body and content type. Network
// errors, timeouts, 429 and 5xx are transient; a malformed URL and other
// non-2xx statuses are fatal.
func (c *Client) Get(ctx context.Context, op, url string, header http.Header) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", Fatal(op, fmt.Errorf("build request: %w", err))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", common.UserAgent())

	c.Logger.Debug("HTTP request", "op", op, "url", url)
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, "", Fatal(op, err)
		}
		return nil, "", Transient(op, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBody))
	if err != nil {
		return nil, "", Transient(op, fmt.Errorf("read body: %w", err))
	}
	c.Raw.Log(false, "GET "+url, body)
	c.Logger.Debug("HTTP response", "op", op, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > errorBodySnippet {
			snippet = snippet[:errorBodySnippet]
		}
		serr := &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(snippet)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, "", Transient(op, serr)
		}
		return nil, "", Fatal(op, serr)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
