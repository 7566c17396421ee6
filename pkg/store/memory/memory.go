// Package memory provides an in-process implementation of store.Store.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/clawdsign/pkg/store"
)

var errClosed = errors.New("memory store closed")

type voteKey struct {
	agentID, category, voterID string
}

// Store keeps agents and votes in maps guarded by a single mutex.
// Returned agents are copies; callers may modify them freely.
type Store struct {
	mu         sync.RWMutex
	agents     map[string]*store.Agent // by signature id
	order      []*store.Agent          // insertion order
	votes      []store.Vote
	voteIndex  map[voteKey]struct{}
	agentVotes map[string]int64
	counters   map[string]int64
	closed     bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		agents:     make(map[string]*store.Agent),
		voteIndex:  make(map[voteKey]struct{}),
		agentVotes: make(map[string]int64),
		counters:   make(map[string]int64),
	}
}

func (s *Store) CreateAgent(ctx context.Context, a *store.Agent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[a.SignatureID]; ok {
		return fmt.Errorf("agent %s: %w", a.SignatureID, store.ErrConflict)
	}
	cp := *a
	s.agents[a.SignatureID] = &cp
	s.order = append(s.order, &cp)
	return nil
}

func (s *Store) AgentBySignatureID(ctx context.Context, signatureID string) (*store.Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[signatureID]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", signatureID, store.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) CountAgents(ctx context.Context, claimedOnly bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !claimedOnly {
		return int64(len(s.order)), nil
	}
	var n int64
	for _, a := range s.order {
		if a.Claimed {
			n++
		}
	}
	return n, nil
}

// RecentAgents orders by CreatedAt descending; agents created at the same
// instant are returned newest insertion first.
func (s *Store) RecentAgents(ctx context.Context, limit int) ([]store.Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]store.Agent, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.order[i])
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b store.Agent) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateVote(ctx context.Context, v *store.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.VoterID != nil {
		k := voteKey{v.AgentID, v.Category, *v.VoterID}
		if _, ok := s.voteIndex[k]; ok {
			return fmt.Errorf("vote %s/%s: %w", v.AgentID, v.Category, store.ErrConflict)
		}
		s.voteIndex[k] = struct{}{}
	}
	s.votes = append(s.votes, *v)
	s.agentVotes[v.AgentID]++
	return nil
}

func (s *Store) HasVote(ctx context.Context, agentID, category, voterID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voteIndex[voteKey{agentID, category, voterID}]
	return ok, nil
}

func (s *Store) CountVotes(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.votes)), nil
}

func (s *Store) CountVotesForAgent(ctx context.Context, agentID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agentVotes[agentID], nil
}

func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}

// Ping fails once the store is closed.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ store.Store = (*Store)(nil)
