package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/clawdsign/pkg/store"
	"github.com/matzehuels/clawdsign/pkg/store/storetest"
)

func TestMapError(t *testing.T) {
	if got := mapError(mongo.ErrNoDocuments); !errors.Is(got, store.ErrNotFound) {
		t.Errorf("mapError(ErrNoDocuments) = %v, want ErrNotFound", got)
	}

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	if got := mapError(dup); !errors.Is(got, store.ErrConflict) {
		t.Errorf("mapError(duplicate key) = %v, want ErrConflict", got)
	}

	other := fmt.Errorf("boom")
	if got := mapError(other); got != other {
		t.Errorf("mapError(other) = %v, want unchanged", got)
	}
}

// TestStore runs the conformance suite against a real server, one database per subtest.
func TestStore(t *testing.T) {
	uri := os.Getenv("CLAWDSIGN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CLAWDSIGN_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) store.Store {
		db := "clawdsign_test_" + uuid.NewString()[:8]
		s, err := Open(ctx, uri, db)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			t.Fatalf("EnsureIndexes: %v", err)
		}
		t.Cleanup(func() {
			_ = s.client.Database(db).Drop(context.Background())
			s.Close()
		})
		return s
	})
}
