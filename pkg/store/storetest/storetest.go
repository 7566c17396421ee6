// Package storetest provides a conformance suite run against every
// store.Store backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/clawdsign/pkg/store"
)

// Factory returns an empty store. The suite closes it when the test ends.
type Factory func(t *testing.T) store.Store

// Run exercises stores built by newStore against the store.Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndLookup", func(t *testing.T) { testCreateAndLookup(t, newStore(t)) })
	t.Run("DuplicateSignature", func(t *testing.T) { testDuplicateSignature(t, newStore(t)) })
	t.Run("ConcurrentClaims", func(t *testing.T) { testConcurrentClaims(t, newStore(t)) })
	t.Run("RecentAgents", func(t *testing.T) { testRecentAgents(t, newStore(t)) })
	t.Run("Votes", func(t *testing.T) { testVotes(t, newStore(t)) })
	t.Run("Counters", func(t *testing.T) { testCounters(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { testPing(t, newStore(t)) })
}

// NewAgent returns a claimed agent with a fresh id.
func NewAgent(signatureID string, createdAt time.Time) *store.Agent {
	by := "tester"
	claimedAt := createdAt
	return &store.Agent{
		ID:            uuid.NewString(),
		Name:          "agent-" + signatureID,
		Model:         "gpt-4",
		Theme:         "explorer",
		SkillsCount:   6,
		SignatureID:   signatureID,
		SignatureHash: 42,
		SignatureSVG:  "<svg/>",
		Claimed:       true,
		ClaimedBy:     &by,
		ClaimedAt:     &claimedAt,
		CreatedAt:     createdAt,
	}
}

func newVote(agentID, category string, voter *string) *store.Vote {
	return &store.Vote{
		ID:       uuid.NewString(),
		AgentID:  agentID,
		Category: category,
		VoterID:  voter,
		VotedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func testCreateAndLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	a := NewAgent("7A8F4465", now)
	if err := s.CreateAgent(ctx, a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	got, err := s.AgentBySignatureID(ctx, "7A8F4465")
	if err != nil {
		t.Fatalf("AgentBySignatureID: %v", err)
	}
	if got.ID != a.ID || got.Name != a.Name || got.SignatureHash != 42 || !got.Claimed {
		t.Errorf("got %+v, want %+v", got, a)
	}
	if got.ClaimedBy == nil || *got.ClaimedBy != "tester" {
		t.Errorf("ClaimedBy = %v, want tester", got.ClaimedBy)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	if _, err := s.AgentBySignatureID(ctx, "00000000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing lookup error = %v, want ErrNotFound", err)
	}

	n, err := s.CountAgents(ctx, false)
	if err != nil || n != 1 {
		t.Errorf("CountAgents(false) = %d, %v; want 1", n, err)
	}
	n, err = s.CountAgents(ctx, true)
	if err != nil || n != 1 {
		t.Errorf("CountAgents(true) = %d, %v; want 1", n, err)
	}
}

func testDuplicateSignature(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()
	if err := s.CreateAgent(ctx, NewAgent("0000ABCD", now)); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	err := s.CreateAgent(ctx, NewAgent("0000ABCD", now))
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate CreateAgent error = %v, want ErrConflict", err)
	}
}

func testConcurrentClaims(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateAgent(ctx, NewAgent("CAFEBABE", now))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("CreateAgent: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conflicts != workers-1 {
		t.Errorf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, workers-1)
	}
}

func testRecentAgents(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := range 7 {
		a := NewAgent(fmt.Sprintf("%08X", i+1), base.Add(time.Duration(i)*time.Second))
		if err := s.CreateAgent(ctx, a); err != nil {
			t.Fatalf("CreateAgent: %v", err)
		}
	}

	got, err := s.RecentAgents(ctx, 5)
	if err != nil {
		t.Fatalf("RecentAgents: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	want := []string{"00000007", "00000006", "00000005", "00000004", "00000003"}
	for i, a := range got {
		if a.SignatureID != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, a.SignatureID, want[i])
		}
	}
}

func testVotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := NewAgent("0BADF00D", time.Now().UTC())
	if err := s.CreateAgent(ctx, a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	voter := "voter-1"
	if err := s.CreateVote(ctx, newVote(a.ID, "creativity", &voter)); err != nil {
		t.Fatalf("CreateVote: %v", err)
	}
	if err := s.CreateVote(ctx, newVote(a.ID, "creativity", &voter)); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate vote error = %v, want ErrConflict", err)
	}
	if err := s.CreateVote(ctx, newVote(a.ID, "style", &voter)); err != nil {
		t.Errorf("vote in another category: %v", err)
	}
	// Anonymous votes are never deduplicated.
	for range 2 {
		if err := s.CreateVote(ctx, newVote(a.ID, "creativity", nil)); err != nil {
			t.Errorf("anonymous vote: %v", err)
		}
	}

	has, err := s.HasVote(ctx, a.ID, "creativity", voter)
	if err != nil || !has {
		t.Errorf("HasVote(creativity) = %v, %v; want true", has, err)
	}
	has, err = s.HasVote(ctx, a.ID, "humor", voter)
	if err != nil || has {
		t.Errorf("HasVote(humor) = %v, %v; want false", has, err)
	}

	if n, err := s.CountVotes(ctx); err != nil || n != 4 {
		t.Errorf("CountVotes = %d, %v; want 4", n, err)
	}
	if n, err := s.CountVotesForAgent(ctx, a.ID); err != nil || n != 4 {
		t.Errorf("CountVotesForAgent = %d, %v; want 4", n, err)
	}
	if n, err := s.CountVotesForAgent(ctx, uuid.NewString()); err != nil || n != 0 {
		t.Errorf("CountVotesForAgent(unknown) = %d, %v; want 0", n, err)
	}
}

func testCounters(t *testing.T, s store.Store) {
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := s.IncrementCounter(ctx, store.CounterTotalSignatures)
		if err != nil {
			t.Fatalf("IncrementCounter: %v", err)
		}
		if got != want {
			t.Errorf("IncrementCounter = %d, want %d", got, want)
		}
	}
}

func testPing(t *testing.T, s store.Store) {
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
