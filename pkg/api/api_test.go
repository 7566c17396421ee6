package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clawdsign/pkg/cache"
	apperr "github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/service"
	"github.com/matzehuels/clawdsign/pkg/store/memory"
)

const atlasBody = `{"name":"Atlas","model":"gpt-4","theme":"explorer","skillsCount":6}`

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := service.New(st, service.WithCache(cache.NewMemoryCache()), service.WithLogger(log.New(io.Discard)))
	return New(svc, Options{Logger: log.New(io.Discard)}), st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestClaimSignature(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/claim-signature", atlasBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	m := decode(t, rec)
	if m["success"] != true || m["message"] != "Signature claimed successfully" {
		t.Errorf("unexpected envelope: %v", m)
	}
	data := m["data"].(map[string]any)
	if data["signatureId"] != "7A8F4465" || data["name"] != "Atlas" {
		t.Errorf("data = %v", data)
	}
	if svg, _ := data["signatureSvg"].(string); !strings.HasPrefix(svg, "<svg") {
		t.Errorf("signatureSvg = %q", svg)
	}
	if data["id"] == "" || data["claimedAt"] == nil {
		t.Errorf("missing id or claimedAt: %v", data)
	}

	// Second claim conflicts and returns the existing row.
	rec = do(t, s, http.MethodPost, "/api/claim-signature", atlasBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second claim status = %d", rec.Code)
	}
	m = decode(t, rec)
	if m["error"] != "Signature already claimed" {
		t.Errorf("error = %v", m["error"])
	}
	sig, ok := m["signature"].(map[string]any)
	if !ok || sig["signature_id"] != "7A8F4465" || sig["id"] != data["id"] {
		t.Errorf("signature = %v", m["signature"])
	}
}

func TestClaimSignatureValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"missing fields", `{"name":"Atlas"}`, http.StatusBadRequest, "Missing required fields"},
		{"skills out of range", `{"name":"A","model":"gpt-4","theme":"t","skillsCount":50}`, http.StatusBadRequest, "skillsCount must be between 1 and 20"},
		{"invalid json", `{"name":`, http.StatusBadRequest, "Invalid JSON body"},
		{"empty body", ``, http.StatusBadRequest, "Request body required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/claim-signature", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if m := decode(t, rec); m["error"] != tt.errMsg {
				t.Errorf("error = %v, want %q", m["error"], tt.errMsg)
			}
		})
	}

	m := decode(t, do(t, s, http.MethodPost, "/api/claim-signature", `{}`))
	req, _ := m["required"].([]any)
	if len(req) != 4 || req[3] != "skillsCount" {
		t.Errorf("required = %v", m["required"])
	}
}

func TestBodyLimit(t *testing.T) {
	s, _ := newTestServer(t)
	big := `{"name":"` + strings.Repeat("x", DefaultMaxBodyBytes) + `"}`
	rec := do(t, s, http.MethodPost, "/api/claim-signature", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestVote(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/claim-signature", atlasBody)

	body := `{"signatureId":"7A8F4465","category":"creativity","voterId":"bob"}`
	rec := do(t, s, http.MethodPost, "/api/vote", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	m := decode(t, rec)
	if m["message"] != "Vote submitted for Atlas! 🗳️" {
		t.Errorf("message = %v", m["message"])
	}
	data := m["data"].(map[string]any)
	if data["agentName"] != "Atlas" || data["category"] != "creativity" || data["votedAt"] == nil {
		t.Errorf("data = %v", data)
	}

	if rec := do(t, s, http.MethodPost, "/api/vote", body); rec.Code != http.StatusConflict {
		t.Errorf("repeat vote status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/vote", `{"signatureId":"00000001","category":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown signature status = %d", rec.Code)
	}
	if m := decode(t, rec); m["error"] != "Agent signature not found" || m["signatureId"] != "00000001" {
		t.Errorf("404 body = %v", m)
	}

	rec = do(t, s, http.MethodPost, "/api/vote", `{"category":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing signature status = %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/claim-signature", atlasBody)
	do(t, s, http.MethodPost, "/api/vote", `{"signatureId":"7A8F4465","category":"creativity"}`)

	rec := do(t, s, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "s-maxage=60, stale-while-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
	m := decode(t, rec)
	if m["success"] != true || m["timestamp"] == nil {
		t.Errorf("envelope = %v", m)
	}
	data := m["data"].(map[string]any)
	if data["totalAgents"] != 1.0 || data["totalVotes"] != 1.0 || data["claimedSignatures"] != 1.0 {
		t.Errorf("counts = %v", data)
	}
	top := data["topAgents"].([]any)
	if len(top) != 1 || top[0].(map[string]any)["votes"] != 1.0 {
		t.Errorf("topAgents = %v", top)
	}
}

func TestPreview(t *testing.T) {
	s, st := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/preview", atlasBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decode(t, rec)["data"].(map[string]any)
	if data["signatureId"] != "7A8F4465" || data["hash"] != 2056209509.0 {
		t.Errorf("data = %v", data)
	}
	if n, _ := st.CountAgents(context.Background(), false); n != 0 {
		t.Error("preview persisted an agent")
	}
}

func TestSignatureLookup(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/claim-signature", atlasBody)

	rec := do(t, s, http.MethodGet, "/api/signatures/7a8f4465", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decode(t, rec)["data"].(map[string]any)
	if data["name"] != "Atlas" || data["skills_count"] != 6.0 {
		t.Errorf("data = %v", data)
	}

	rec = do(t, s, http.MethodGet, "/api/signatures/7A8F4465/svg", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("svg status = %d, type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("<svg")) {
		t.Errorf("svg body = %q", rec.Body.String())
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("svg response has no ETag")
	}
	req := httptest.NewRequest(http.MethodGet, "/api/signatures/7A8F4465/svg", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Errorf("conditional GET status = %d, body len = %d", rec.Code, rec.Body.Len())
	}

	if rec := do(t, s, http.MethodGet, "/api/signatures/DEADBEEF", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/signatures/not-hex", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d", rec.Code)
	}
}

func TestCORSAndMethods(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodOptions, "/api/claim-signature", "")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("OPTIONS status = %d, body = %q", rec.Code, rec.Body)
	}
	h := rec.Header()
	if h.Get("Access-Control-Allow-Origin") != "*" ||
		h.Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" ||
		h.Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Errorf("CORS headers = %v", h)
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/claim-signature"},
		{http.MethodGet, "/api/vote"},
		{http.MethodPost, "/api/stats"},
	} {
		rec := do(t, s, tc.method, tc.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tc.method, tc.path, rec.Code)
			continue
		}
		if m := decode(t, rec); m["error"] != "Method not allowed" {
			t.Errorf("%s %s error = %v", tc.method, tc.path, m["error"])
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s %s missing CORS header", tc.method, tc.path)
		}
	}
}

func TestHealth(t *testing.T) {
	s, st := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	st.Close()
	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("closed store status = %d, want 503", rec.Code)
	}
}

func TestRecoverer(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") }))
	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode(t, rec); m["error"] != "Internal server error" || m["details"] != "kaboom" {
		t.Errorf("body = %v", m)
	}
}

func TestServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, ServeConfig{ShutdownTimeout: time.Second}) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestWriteErrorStatus(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{
			name:        "uncoded",
			err:         errors.New("disk full"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Internal server error",
			wantDetails: "disk full",
		},
		{
			name:        "timeout",
			err:         apperr.Wrap(apperr.ErrCodeTimeout, context.DeadlineExceeded, "Stats request timed out"),
			wantStatus:  http.StatusGatewayTimeout,
			wantError:   "Stats request timed out",
			wantDetails: context.DeadlineExceeded.Error(),
		},
		{
			name:       "coded client error",
			err:        apperr.New(apperr.ErrCodeInvalidInput, "category too long"),
			wantStatus: http.StatusBadRequest,
			wantError:  "category too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			m := decode(t, rec)
			if m["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", m["error"], tt.wantError)
			}
			if got, _ := m["details"].(string); got != tt.wantDetails {
				t.Errorf("details = %q, want %q", got, tt.wantDetails)
			}
		})
	}
}

func TestStatsEnvelopeTimestamp(t *testing.T) {
	s, _ := newTestServer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	first := decode(t, do(t, s, http.MethodGet, "/api/stats", ""))
	now = now.Add(30 * time.Second)
	second := decode(t, do(t, s, http.MethodGet, "/api/stats", ""))

	if got := second["timestamp"]; got != "2026-03-01T12:00:30Z" {
		t.Errorf("envelope timestamp = %v, want the response time", got)
	}
	computed := first["data"].(map[string]any)["timestamp"]
	if second["data"].(map[string]any)["timestamp"] != computed {
		t.Errorf("cached data.timestamp changed: %v -> %v", computed, second["data"].(map[string]any)["timestamp"])
	}
	if first["timestamp"] == second["timestamp"] {
		t.Error("envelope timestamp reused across responses")
	}
}
