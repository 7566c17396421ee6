package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/clawdsign/pkg/cache"
	"github.com/matzehuels/clawdsign/pkg/service"
	"github.com/matzehuels/clawdsign/pkg/store"
)

// ClaimResponse is the body of a successful claim.
type ClaimResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    ClaimData `json:"data"`
}

// ClaimData describes the newly claimed signature.
type ClaimData struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SignatureID  string     `json:"signatureId"`
	SignatureSVG string     `json:"signatureSvg"`
	ClaimedAt    *time.Time `json:"claimedAt"`
}

// VoteResponse is the body of a successful vote.
type VoteResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    VoteData `json:"data"`
}

// VoteData describes a recorded vote.
type VoteData struct {
	ID        string    `json:"id"`
	AgentName string    `json:"agentName"`
	Category  string    `json:"category"`
	VotedAt   time.Time `json:"votedAt"`
}

// StatsResponse is the body of the stats endpoint.
type StatsResponse struct {
	Success   bool           `json:"success"`
	Data      *service.Stats `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// PreviewResponse is the body of the preview endpoint.
type PreviewResponse struct {
	Success bool        `json:"success"`
	Data    PreviewData `json:"data"`
}

// PreviewData is a generated, unclaimed signature.
type PreviewData struct {
	SignatureID  string `json:"signatureId"`
	Hash         int32  `json:"hash"`
	SignatureSVG string `json:"signatureSvg"`
}

// SignatureResponse is the body of a signature lookup.
type SignatureResponse struct {
	Success bool         `json:"success"`
	Data    *store.Agent `json:"data"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req service.ClaimRequest
	if !readJSON(w, r, &req) {
		return
	}
	agent, err := s.svc.Claim(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ClaimResponse{
		Success: true,
		Message: "Signature claimed successfully",
		Data: ClaimData{
			ID:           agent.ID,
			Name:         agent.Name,
			SignatureID:  agent.SignatureID,
			SignatureSVG: agent.SignatureSVG,
			ClaimedAt:    agent.ClaimedAt,
		},
	})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req service.VoteRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.svc.Vote(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, VoteResponse{
		Success: true,
		Message: fmt.Sprintf("Vote submitted for %s! 🗳️", res.AgentName),
		Data: VoteData{
			ID:        res.Vote.ID,
			AgentName: res.AgentName,
			Category:  res.Vote.Category,
			VotedAt:   res.Vote.VotedAt,
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "s-maxage=60, stale-while-revalidate")
	st, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// data.timestamp is when the stats were computed, possibly from cache.
	writeJSON(w, http.StatusOK, StatsResponse{Success: true, Data: st, Timestamp: s.now().UTC()})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req service.ClaimRequest
	if !readJSON(w, r, &req) {
		return
	}
	sig, err := s.svc.Preview(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		Success: true,
		Data:    PreviewData{SignatureID: sig.SignatureID, Hash: sig.Hash, SignatureSVG: sig.SVG},
	})
}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	agent, err := s.svc.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SignatureResponse{Success: true, Data: agent})
}

func (s *Server) handleSignatureSVG(w http.ResponseWriter, r *http.Request) {
	agent, err := s.svc.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	etag := `"` + cache.Hash([]byte(agent.SignatureSVG))[:16] + `"`
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(agent.SignatureSVG))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store().Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
