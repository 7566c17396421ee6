// Package client is a Go client for the ClawdSign HTTP API.
//
// GET requests are retried with backoff on network errors, 429 and 5xx
// responses. Claims and votes are sent once, since a retried claim would
// report its own earlier success as a conflict.
//
// Failures are *errors.Error values whose codes mirror the server's:
//
//	_, err := c.Claim(ctx, req)
//	if errors.Is(err, errors.ErrCodeAlreadyClaimed) { ... }
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/clawdsign/pkg/api"
	"github.com/matzehuels/clawdsign/pkg/buildinfo"
	"github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/httputil"
	"github.com/matzehuels/clawdsign/pkg/service"
	"github.com/matzehuels/clawdsign/pkg/store"
)

// DefaultBaseURL is used when no server URL is configured.
const DefaultBaseURL = "http://localhost:8080"

const httpTimeout = 10 * time.Second

// Client talks to one ClawdSign server.
type Client struct {
	baseURL string
	http    *http.Client
	retry   func(ctx context.Context, fn func() error) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetry sets the number of attempts and the initial backoff for GET requests.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retry = func(ctx context.Context, fn func() error) error {
			return httputil.Retry(ctx, attempts, delay, fn)
		}
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		retry:   httputil.RetryWithBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Claim claims the signature generated from req.
func (c *Client) Claim(ctx context.Context, req service.ClaimRequest) (*api.ClaimData, error) {
	var resp api.ClaimResponse
	if err := c.post(ctx, "/api/claim-signature", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Vote casts a vote and returns the server's confirmation.
func (c *Client) Vote(ctx context.Context, req service.VoteRequest) (*api.VoteResponse, error) {
	var resp api.VoteResponse
	if err := c.post(ctx, "/api/vote", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Preview generates a signature on the server without claiming it.
func (c *Client) Preview(ctx context.Context, req service.ClaimRequest) (*api.PreviewData, error) {
	var resp api.PreviewResponse
	if err := c.post(ctx, "/api/preview", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Stats fetches aggregate statistics.
func (c *Client) Stats(ctx context.Context) (*service.Stats, error) {
	var resp api.StatsResponse
	if err := c.get(ctx, "/api/stats", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.New(errors.ErrCodeNetwork, "stats response has no data")
	}
	return resp.Data, nil
}

// Signature fetches the agent that claimed signatureID.
func (c *Client) Signature(ctx context.Context, signatureID string) (*store.Agent, error) {
	var resp api.SignatureResponse
	if err := c.get(ctx, "/api/signatures/"+url.PathEscape(signatureID), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SignatureSVG fetches the SVG of a claimed signature.
func (c *Client) SignatureSVG(ctx context.Context, signatureID string) (string, error) {
	var svg string
	err := c.retry(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, "/api/signatures/"+url.PathEscape(signatureID)+"/svg", nil)
		if err != nil {
			return err
		}
		svg = string(body)
		return nil
	})
	return svg, unwrapRetry(err)
}

// Health checks the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return unwrapRetry(err)
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	err := c.retry(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, v)
	})
	return unwrapRetry(err)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return unwrapRetry(err)
	}
	return json.Unmarshal(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", c.baseURL))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "reading response"))
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, responseError(path, resp, body)
}

// errorResponse mirrors the server's error body.
type errorResponse struct {
	Error       string       `json:"error"`
	Details     string       `json:"details"`
	Required    []string     `json:"required"`
	Signature   *store.Agent `json:"signature"`
	SignatureID string       `json:"signatureId"`
}

// responseError converts a non-2xx response into a coded error, keeping the
// status as the cause. Retryable statuses stay wrapped for the retry loop.
func responseError(path string, resp *http.Response, body []byte) error {
	status := resp.StatusCode
	var er errorResponse
	_ = json.Unmarshal(body, &er)
	msg := er.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	statusErr := httputil.CheckStatusMessage(status, msg)
	e := errors.Wrap(codeFor(path, status, er), statusErr, "%s", msg)
	switch {
	case len(er.Required) > 0:
		e.Fields = er.Required
	case er.Signature != nil:
		e.WithDetail(er.Signature)
	case er.SignatureID != "":
		e.WithDetail(er.SignatureID)
	case status == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		e.WithDetail(&errors.RateLimitedError{RetryAfter: retryAfter, Message: msg})
	}
	if httputil.IsRetryable(statusErr) {
		return httputil.Retryable(e)
	}
	return e
}

func codeFor(path string, status int, er errorResponse) errors.Code {
	switch {
	case status == http.StatusBadRequest && len(er.Required) > 0:
		return errors.ErrCodeMissingFields
	case status == http.StatusBadRequest:
		return errors.ErrCodeInvalidInput
	case status == http.StatusNotFound && strings.HasPrefix(path, "/api/"):
		return errors.ErrCodeSignatureNotFound
	case status == http.StatusNotFound:
		return errors.ErrCodeNotFound
	case status == http.StatusConflict && path == "/api/vote":
		return errors.ErrCodeAlreadyVoted
	case status == http.StatusConflict:
		return errors.ErrCodeAlreadyClaimed
	case status == http.StatusTooManyRequests:
		return errors.ErrCodeRateLimited
	default:
		return errors.ErrCodeNetwork
	}
}

// unwrapRetry strips the retry marker so callers see the coded error.
func unwrapRetry(err error) error {
	if re, ok := err.(*httputil.RetryableError); ok {
		return re.Err
	}
	return err
}
