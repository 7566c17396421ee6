package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/matzehuels/clawdsign/pkg/store"
	"github.com/matzehuels/clawdsign/pkg/store/storetest"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), store.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "agents_signature_id_key"}, store.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	other := &pgconn.PgError{Code: "23503"}
	if got := mapError(other); got != other {
		t.Errorf("mapError(fk violation) = %v, want unchanged", got)
	}
}

// TestStore runs the conformance suite against a real database.
// Each subtest gets a fresh schema.
func TestStore(t *testing.T) {
	url := os.Getenv("CLAWDSIGN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CLAWDSIGN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(ctx, url)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS votes, agents, counters`); err != nil {
			t.Fatalf("reset: %v", err)
		}
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}
