package service

import (
	"context"
	"errors"
	"time"

	apperr "github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/observability"
	"github.com/matzehuels/clawdsign/pkg/store"
)

// VoteRequest casts a vote for a claimed signature. VoterID is optional;
// without it the vote is anonymous and never deduplicated.
type VoteRequest struct {
	SignatureID string `json:"signatureId"`
	Category    string `json:"category"`
	VoterID     string `json:"voterId,omitempty"`
}

// VoteResult is a recorded vote and the name of the agent it was cast for.
type VoteResult struct {
	Vote      store.Vote
	AgentName string
}

// Vote records a vote. It fails with SIGNATURE_NOT_FOUND when no agent
// claimed the signature, and with ALREADY_VOTED when VoterID already voted
// for the agent in the category.
func (s *Service) Vote(ctx context.Context, r VoteRequest) (res *VoteResult, err error) {
	start := time.Now()
	defer func() { observability.Service().OnVote(ctx, r.SignatureID, r.Category, time.Since(start), err) }()

	if r.SignatureID == "" || r.Category == "" {
		return nil, apperr.Missing("signatureId", "category")
	}
	if err := apperr.ValidateText("category", r.Category, apperr.MaxCategoryLength); err != nil {
		return nil, err
	}
	if r.VoterID != "" {
		if err := apperr.ValidateText("voterId", r.VoterID, apperr.MaxVoterIDLength); err != nil {
			return nil, err
		}
	}

	agent, err := s.Lookup(ctx, r.SignatureID)
	if err != nil {
		return nil, err
	}

	v := store.Vote{
		ID:       s.newID(),
		AgentID:  agent.ID,
		Category: r.Category,
		VotedAt:  s.timestamp(),
	}
	if r.VoterID != "" {
		has, err := s.store.HasVote(ctx, agent.ID, r.Category, r.VoterID)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "Failed to submit vote")
		}
		if has {
			return nil, alreadyVoted()
		}
		voter := r.VoterID
		v.VoterID = &voter
	}

	if err := s.store.CreateVote(ctx, &v); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, alreadyVoted()
		}
		return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "Failed to submit vote")
	}

	s.invalidateStats(ctx)
	return &VoteResult{Vote: v, AgentName: agent.Name}, nil
}

func alreadyVoted() error {
	return apperr.New(apperr.ErrCodeAlreadyVoted, "Already voted for this signature in this category")
}
