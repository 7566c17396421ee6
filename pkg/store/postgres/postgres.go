// Package postgres implements store.Store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/clawdsign/pkg/store"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Store persists agents and votes in PostgreSQL.
type Store struct {
	db    DB
	close func()
}

// Open connects a pool to url and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{db: pool, close: pool.Close}, nil
}

// New wraps an existing connection. Close is a no-op for stores built this way.
func New(db DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS agents (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	model          TEXT NOT NULL,
	theme          TEXT NOT NULL,
	skills_count   INTEGER NOT NULL,
	signature_id   TEXT NOT NULL,
	signature_hash INTEGER NOT NULL,
	signature_svg  TEXT NOT NULL,
	claimed        BOOLEAN NOT NULL DEFAULT FALSE,
	claimed_by     TEXT,
	claimed_at     TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS agents_signature_id_key ON agents (signature_id);
CREATE INDEX IF NOT EXISTS agents_created_at_idx ON agents (created_at DESC);

CREATE TABLE IF NOT EXISTS votes (
	id       UUID PRIMARY KEY,
	agent_id UUID NOT NULL REFERENCES agents (id) ON DELETE CASCADE,
	category TEXT NOT NULL,
	voter_id TEXT,
	voted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS votes_agent_category_voter_key ON votes (agent_id, category, voter_id);

CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value BIGINT NOT NULL DEFAULT 0
);
`

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (s *Store) CreateAgent(ctx context.Context, a *store.Agent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO agents (id, name, model, theme, skills_count, signature_id, signature_hash,
			signature_svg, claimed, claimed_by, claimed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.Name, a.Model, a.Theme, a.SkillsCount, a.SignatureID, a.SignatureHash,
		a.SignatureSVG, a.Claimed, a.ClaimedBy, a.ClaimedAt, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert agent %s: %w", a.SignatureID, mapError(err))
	}
	return nil
}

const agentColumns = `id::text, name, model, theme, skills_count, signature_id, signature_hash,
	signature_svg, claimed, claimed_by, claimed_at, created_at`

func scanAgent(row pgx.Row) (*store.Agent, error) {
	var a store.Agent
	err := row.Scan(&a.ID, &a.Name, &a.Model, &a.Theme, &a.SkillsCount, &a.SignatureID,
		&a.SignatureHash, &a.SignatureSVG, &a.Claimed, &a.ClaimedBy, &a.ClaimedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) AgentBySignatureID(ctx context.Context, signatureID string) (*store.Agent, error) {
	a, err := scanAgent(s.db.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE signature_id = $1`, signatureID))
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", signatureID, mapError(err))
	}
	return a, nil
}

func (s *Store) CountAgents(ctx context.Context, claimedOnly bool) (int64, error) {
	q := `SELECT count(*) FROM agents`
	if claimedOnly {
		q += ` WHERE claimed`
	}
	return s.count(ctx, q)
}

func (s *Store) RecentAgents(ctx context.Context, limit int) ([]store.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+agentColumns+` FROM agents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent agents: %w", err)
	}
	defer rows.Close()

	var out []store.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("recent agents: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent agents: %w", err)
	}
	return out, nil
}

func (s *Store) CreateVote(ctx context.Context, v *store.Vote) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO votes (id, agent_id, category, voter_id, voted_at)
		VALUES ($1, $2, $3, $4, $5)`,
		v.ID, v.AgentID, v.Category, v.VoterID, v.VotedAt)
	if err != nil {
		return fmt.Errorf("insert vote for %s: %w", v.AgentID, mapError(err))
	}
	return nil
}

func (s *Store) HasVote(ctx context.Context, agentID, category, voterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM votes WHERE agent_id = $1 AND category = $2 AND voter_id = $3)`,
		agentID, category, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has vote: %w", err)
	}
	return exists, nil
}

func (s *Store) CountVotes(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM votes`)
}

func (s *Store) CountVotesForAgent(ctx context.Context, agentID string) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM votes WHERE agent_id = $1`, agentID)
}

func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, error) {
	var v int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return v, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *Store) count(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// mapError translates driver errors into store sentinels, keeping the cause.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

var _ store.Store = (*Store)(nil)
