// Package store defines the persistence contract for claimed signatures and votes.
//
// Three backends implement [Store]:
//
//   - memory: process-local maps, for tests and single-instance development
//   - postgres: PostgreSQL through pgx, with tables created by Migrate
//   - mongo: MongoDB collections with unique indexes created by EnsureIndexes
//
// Uniqueness of signature ids and of (agent, category, voter) votes is enforced
// by the backend, so concurrent claims of one signature yield exactly one
// winner and [ErrConflict] for the rest.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by every backend.
var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned when an insert violates a uniqueness constraint.
	ErrConflict = errors.New("store: conflict")
)

// CounterTotalSignatures counts successful claims.
const CounterTotalSignatures = "total_signatures"

// Agent is a claimed signature together with the inputs that produced it.
// JSON field names follow the persisted row.
type Agent struct {
	ID            string     `json:"id" bson:"_id"`
	Name          string     `json:"name" bson:"name"`
	Model         string     `json:"model" bson:"model"`
	Theme         string     `json:"theme" bson:"theme"`
	SkillsCount   int        `json:"skills_count" bson:"skills_count"`
	SignatureID   string     `json:"signature_id" bson:"signature_id"`
	SignatureHash int32      `json:"signature_hash" bson:"signature_hash"`
	SignatureSVG  string     `json:"signature_svg" bson:"signature_svg"`
	Claimed       bool       `json:"claimed" bson:"claimed"`
	ClaimedBy     *string    `json:"claimed_by" bson:"claimed_by"`
	ClaimedAt     *time.Time `json:"claimed_at" bson:"claimed_at"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
}

// Vote is one vote for an agent in a category. VoterID is nil for
// anonymous votes, which are never deduplicated.
type Vote struct {
	ID       string    `json:"id" bson:"_id"`
	AgentID  string    `json:"agent_id" bson:"agent_id"`
	Category string    `json:"category" bson:"category"`
	VoterID  *string   `json:"voter_id" bson:"voter_id"`
	VotedAt  time.Time `json:"voted_at" bson:"voted_at"`
}

// Store persists agents, votes and named counters.
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateAgent inserts a. It returns ErrConflict when a.SignatureID is taken.
	CreateAgent(ctx context.Context, a *Agent) error

	// AgentBySignatureID returns the agent owning signatureID or ErrNotFound.
	AgentBySignatureID(ctx context.Context, signatureID string) (*Agent, error)

	// CountAgents counts all agents, or only claimed ones.
	CountAgents(ctx context.Context, claimedOnly bool) (int64, error)

	// RecentAgents returns up to limit agents, newest first.
	RecentAgents(ctx context.Context, limit int) ([]Agent, error)

	// CreateVote inserts v. It returns ErrConflict when v.VoterID is set and
	// the voter already voted for the agent in the category.
	CreateVote(ctx context.Context, v *Vote) error

	// HasVote reports whether voterID voted for agentID in category.
	HasVote(ctx context.Context, agentID, category, voterID string) (bool, error)

	// CountVotes counts all votes.
	CountVotes(ctx context.Context) (int64, error)

	// CountVotesForAgent counts the votes cast for agentID.
	CountVotesForAgent(ctx context.Context, agentID string) (int64, error)

	// IncrementCounter adds one to the named counter, creating it at 1.
	IncrementCounter(ctx context.Context, name string) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
