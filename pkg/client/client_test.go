package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clawdsign/pkg/api"
	"github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/service"
	"github.com/matzehuels/clawdsign/pkg/store"
	"github.com/matzehuels/clawdsign/pkg/store/memory"
)

var atlas = service.ClaimRequest{Name: "Atlas", Model: "gpt-4", Theme: "explorer", SkillsCount: 6}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	quiet := log.New(io.Discard)
	svc := service.New(memory.New(), service.WithLogger(quiet))
	srv := httptest.NewServer(api.New(svc, api.Options{Logger: quiet}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(2, time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNew(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	c, _ = New("https://sign.example.com/")
	if c.baseURL != "https://sign.example.com" {
		t.Errorf("trailing slash not trimmed: %q", c.baseURL)
	}
	if _, err := New("ftp://example.com"); err == nil {
		t.Error("expected error for non-http URL")
	}
}

func TestClaimAndLookup(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	data, err := c.Claim(ctx, atlas)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if data.SignatureID != "7A8F4465" || data.ClaimedAt == nil {
		t.Errorf("data = %+v", data)
	}

	_, err = c.Claim(ctx, atlas)
	if !errors.Is(err, errors.ErrCodeAlreadyClaimed) {
		t.Fatalf("second claim = %v, want ALREADY_CLAIMED", err)
	}
	e, _ := errors.As(err)
	if a, ok := e.Detail.(*store.Agent); !ok || a.ID != data.ID {
		t.Errorf("Detail = %#v", e.Detail)
	}

	agent, err := c.Signature(ctx, "7A8F4465")
	if err != nil || agent.Name != "Atlas" {
		t.Errorf("Signature = %+v, %v", agent, err)
	}
	svg, err := c.SignatureSVG(ctx, "7A8F4465")
	if err != nil || !strings.HasPrefix(svg, "<svg") {
		t.Errorf("SignatureSVG = %.20q, %v", svg, err)
	}
	if _, err := c.Signature(ctx, "DEADBEEF"); !errors.Is(err, errors.ErrCodeSignatureNotFound) {
		t.Errorf("unknown signature = %v", err)
	}
}

func TestClaimMissingFields(t *testing.T) {
	_, err := newTestClient(t).Claim(context.Background(), service.ClaimRequest{Name: "x"})
	if !errors.Is(err, errors.ErrCodeMissingFields) {
		t.Fatalf("err = %v, want MISSING_FIELDS", err)
	}
	e, _ := errors.As(err)
	if len(e.Fields) != 4 {
		t.Errorf("Fields = %v", e.Fields)
	}
}

func TestVoteAndStats(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	if _, err := c.Claim(ctx, atlas); err != nil {
		t.Fatal(err)
	}

	resp, err := c.Vote(ctx, service.VoteRequest{SignatureID: "7A8F4465", Category: "style", VoterID: "v1"})
	if err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if resp.Data.AgentName != "Atlas" || !strings.Contains(resp.Message, "Atlas") {
		t.Errorf("resp = %+v", resp)
	}
	_, err = c.Vote(ctx, service.VoteRequest{SignatureID: "7A8F4465", Category: "style", VoterID: "v1"})
	if !errors.Is(err, errors.ErrCodeAlreadyVoted) {
		t.Errorf("repeat vote = %v, want ALREADY_VOTED", err)
	}

	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalAgents != 1 || st.TotalVotes != 1 || len(st.TopAgents) != 1 {
		t.Errorf("stats = %+v", st)
	}

	prev, err := c.Preview(ctx, service.ClaimRequest{Name: "Nova", Model: "llama-3", Theme: "poet", SkillsCount: 9})
	if err != nil || len(prev.SignatureID) != 8 {
		t.Errorf("Preview = %+v, %v", prev, err)
	}
	if err := c.Health(ctx); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"totalAgents":7,"topAgents":[],"recentAgents":[]}}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	st, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalAgents != 7 || calls.Load() != 3 {
		t.Errorf("TotalAgents = %d after %d calls", st.TotalAgents, calls.Load())
	}
}

func TestDoesNotRetryPosts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error","details":"db down"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	_, err := c.Claim(context.Background(), atlas)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
	if calls.Load() != 1 {
		t.Errorf("claim sent %d times, want 1", calls.Load())
	}
	if got := errors.UserMessage(err); got != "Internal server error" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := New(url, WithRetry(1, time.Millisecond))
	if _, err := c.Stats(context.Background()); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
}

func TestRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"Too many votes"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.Vote(context.Background(), service.VoteRequest{SignatureID: "7A8F4465", Category: "style"})
	e, ok := errors.As(err)
	if !ok || e.Code != errors.ErrCodeRateLimited {
		t.Fatalf("err = %v, want RATE_LIMITED", err)
	}
	rl, ok := e.Detail.(*errors.RateLimitedError)
	if !ok || rl.RetryAfter != 30 || rl.Message != "Too many votes" {
		t.Errorf("Detail = %#v", e.Detail)
	}
}
