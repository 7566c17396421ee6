package service

import (
	"context"
	"errors"
	"time"

	apperr "github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/observability"
	"github.com/matzehuels/clawdsign/pkg/signature"
	"github.com/matzehuels/clawdsign/pkg/store"
)

// ClaimRequest asks to claim the signature generated from its attributes.
type ClaimRequest struct {
	Name        string `json:"name"`
	Model       string `json:"model"`
	Theme       string `json:"theme"`
	SkillsCount int    `json:"skillsCount"`
	ClaimedBy   string `json:"claimedBy,omitempty"`
}

func (r ClaimRequest) signatureRequest() signature.Request {
	return signature.Request{Name: r.Name, Model: r.Model, Theme: r.Theme, SkillsCount: r.SkillsCount}
}

// claimFields lists the fields a claim or preview must carry.
var claimFields = []string{"name", "model", "theme", "skillsCount"}

// ValidateClaim checks r before any signature is generated.
func ValidateClaim(r ClaimRequest) error {
	if r.Name == "" || r.Model == "" || r.Theme == "" || r.SkillsCount == 0 {
		return apperr.Missing(claimFields...)
	}
	if err := apperr.ValidateText("name", r.Name, apperr.MaxNameLength); err != nil {
		return err
	}
	if err := apperr.ValidateText("model", r.Model, apperr.MaxModelLength); err != nil {
		return err
	}
	if err := apperr.ValidateText("theme", r.Theme, apperr.MaxThemeLength); err != nil {
		return err
	}
	if err := apperr.ValidateSkillsCount(r.SkillsCount); err != nil {
		return err
	}
	if r.ClaimedBy != "" {
		return apperr.ValidateText("claimedBy", r.ClaimedBy, apperr.MaxNameLength)
	}
	return nil
}

// Preview generates the signature for r without persisting anything.
func (s *Service) Preview(r ClaimRequest) (signature.Signature, error) {
	if err := ValidateClaim(r); err != nil {
		return signature.Signature{}, err
	}
	return signature.Generate(r.signatureRequest()), nil
}

// Claim generates the signature for r and records it as claimed.
//
// If the signature is already claimed the error has code ALREADY_CLAIMED and
// carries the existing *store.Agent as its Detail. Failing to bump the
// signature counter or to invalidate cached statistics is logged only.
func (s *Service) Claim(ctx context.Context, r ClaimRequest) (agent *store.Agent, err error) {
	start := time.Now()
	sigID := ""
	defer func() { observability.Service().OnClaim(ctx, sigID, time.Since(start), err) }()

	if err := ValidateClaim(r); err != nil {
		return nil, err
	}
	sig := signature.Generate(r.signatureRequest())
	sigID = sig.SignatureID

	existing, err := s.store.AgentBySignatureID(ctx, sig.SignatureID)
	switch {
	case err == nil:
		return nil, alreadyClaimed(existing)
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "Failed to claim signature")
	}

	now := s.timestamp()
	agent = &store.Agent{
		ID:            s.newID(),
		Name:          r.Name,
		Model:         r.Model,
		Theme:         r.Theme,
		SkillsCount:   r.SkillsCount,
		SignatureID:   sig.SignatureID,
		SignatureHash: sig.Hash,
		SignatureSVG:  sig.SVG,
		Claimed:       true,
		ClaimedAt:     &now,
		CreatedAt:     now,
	}
	if r.ClaimedBy != "" {
		by := r.ClaimedBy
		agent.ClaimedBy = &by
	}

	if err := s.store.CreateAgent(ctx, agent); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a race with a concurrent claim; report the winner if visible.
			winner, _ := s.store.AgentBySignatureID(ctx, sig.SignatureID)
			return nil, alreadyClaimed(winner)
		}
		return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "Failed to claim signature")
	}

	if _, err := s.store.IncrementCounter(ctx, store.CounterTotalSignatures); err != nil {
		s.logger.Warn("increment counter failed", "counter", store.CounterTotalSignatures, "err", err)
	}
	s.invalidateStats(ctx)
	return agent, nil
}

func alreadyClaimed(existing *store.Agent) error {
	e := apperr.New(apperr.ErrCodeAlreadyClaimed, "Signature already claimed")
	if existing != nil {
		e.WithDetail(existing)
	}
	return e
}

// Lookup returns the agent that claimed signatureID. Ids are accepted with or
// without leading zeros and in either case.
func (s *Service) Lookup(ctx context.Context, signatureID string) (*store.Agent, error) {
	if err := apperr.ValidateSignatureID(signatureID); err != nil {
		return nil, err
	}
	id := apperr.NormalizeSignatureID(signatureID)
	a, err := s.store.AgentBySignatureID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.ErrCodeSignatureNotFound, "Agent signature not found").WithDetail(id)
		}
		return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "Failed to load signature")
	}
	return a, nil
}
