package service

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/clawdsign/pkg/cache"
	apperr "github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/observability"
)

// Limits for the statistics lists.
const (
	TopAgentsLimit    = 10
	RecentAgentsLimit = 5
)

// statsKeyType labels the stats entry in cache hooks.
const statsKeyType = "stats"

// StatsKey is the cache key for aggregated statistics. Bump the version when
// the Stats layout changes.
var StatsKey = cache.Key("stats", "v1")

// Stats is the aggregate view served by the stats endpoint.
type Stats struct {
	TotalAgents       int64         `json:"totalAgents"`
	TotalVotes        int64         `json:"totalVotes"`
	ClaimedSignatures int64         `json:"claimedSignatures"`
	TopAgents         []TopAgent    `json:"topAgents"`
	RecentAgents      []RecentAgent `json:"recentAgents"`
	Timestamp         time.Time     `json:"timestamp"`
}

// TopAgent is a recent agent with its vote count.
type TopAgent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SignatureID string    `json:"signatureId"`
	Model       string    `json:"model"`
	Theme       string    `json:"theme"`
	Votes       int64     `json:"votes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecentAgent is the short listing of a newly claimed signature.
type RecentAgent struct {
	Name        string    `json:"name"`
	SignatureID string    `json:"signatureId"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats returns aggregate statistics, from the cache when fresh.
//
// Store failures degrade the result instead of failing it: a failed count is
// reported as 0 and a failed listing as empty. Only an ended context
// produces an error; a missed deadline is reported as TIMEOUT.
func (s *Service) Stats(ctx context.Context) (st *Stats, err error) {
	start := time.Now()
	cached := false
	defer func() { observability.Service().OnStats(ctx, cached, time.Since(start), err) }()

	if st, ok := s.cachedStats(ctx); ok {
		cached = true
		return st, nil
	}

	st = &Stats{
		TotalAgents:       s.count(ctx, "agents", func() (int64, error) { return s.store.CountAgents(ctx, false) }),
		TotalVotes:        s.count(ctx, "votes", func() (int64, error) { return s.store.CountVotes(ctx) }),
		ClaimedSignatures: s.count(ctx, "claimed", func() (int64, error) { return s.store.CountAgents(ctx, true) }),
		TopAgents:         s.topAgents(ctx),
		RecentAgents:      s.recentAgents(ctx),
		Timestamp:         s.timestamp(),
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.ErrCodeTimeout, err, "Stats request timed out")
		}
		return nil, err
	}

	s.storeStats(ctx, st)
	return st, nil
}

func (s *Service) count(ctx context.Context, what string, fn func() (int64, error)) int64 {
	n, err := fn()
	if err != nil {
		s.logger.Error("error fetching count", "count", what, "err", err)
		return 0
	}
	return n
}

// topAgents counts votes for the most recent agents concurrently and orders
// them by votes, keeping recency order between ties.
func (s *Service) topAgents(ctx context.Context) []TopAgent {
	agents, err := s.store.RecentAgents(ctx, TopAgentsLimit)
	if err != nil {
		s.logger.Error("error fetching top agents", "err", err)
		return []TopAgent{}
	}

	top := make([]TopAgent, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range agents {
		top[i] = TopAgent{
			ID:          a.ID,
			Name:        a.Name,
			SignatureID: a.SignatureID,
			Model:       a.Model,
			Theme:       a.Theme,
			CreatedAt:   a.CreatedAt,
		}
		g.Go(func() error {
			n, err := s.store.CountVotesForAgent(gctx, a.ID)
			if err != nil {
				s.logger.Warn("error counting votes", "agent", a.ID, "err", err)
				return nil
			}
			top[i].Votes = n
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(top, func(a, b TopAgent) int { return cmp.Compare(b.Votes, a.Votes) })
	return top
}

func (s *Service) recentAgents(ctx context.Context) []RecentAgent {
	agents, err := s.store.RecentAgents(ctx, RecentAgentsLimit)
	if err != nil {
		s.logger.Error("error fetching recent agents", "err", err)
		return []RecentAgent{}
	}
	out := make([]RecentAgent, len(agents))
	for i, a := range agents {
		out[i] = RecentAgent{Name: a.Name, SignatureID: a.SignatureID, Model: a.Model, CreatedAt: a.CreatedAt}
	}
	return out
}

func (s *Service) cachedStats(ctx context.Context) (*Stats, bool) {
	data, ok, err := s.cache.Get(ctx, StatsKey)
	if err != nil {
		observability.Cache().OnCacheError(ctx, statsKeyType, err)
		return nil, false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, statsKeyType)
		return nil, false
	}
	var st Stats
	if err := json.Unmarshal(data, &st); err != nil {
		observability.Cache().OnCacheError(ctx, statsKeyType, err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, statsKeyType)
	return &st, true
}

func (s *Service) storeStats(ctx context.Context, st *Stats) {
	if s.statsTTL <= 0 {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, StatsKey, data, s.statsTTL); err != nil {
		observability.Cache().OnCacheError(ctx, statsKeyType, err)
		return
	}
	observability.Cache().OnCacheSet(ctx, statsKeyType, len(data))
}

// invalidateStats drops cached statistics after a write.
func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Delete(ctx, StatsKey); err != nil {
		observability.Cache().OnCacheError(ctx, statsKeyType, err)
		s.logger.Warn("stats cache invalidation failed", "err", err)
	}
}
