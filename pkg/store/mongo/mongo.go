// Package mongo implements store.Store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/clawdsign/pkg/store"
)

// Collection names.
const (
	AgentsCollection   = "agents"
	VotesCollection    = "votes"
	CountersCollection = "counters"
)

// Store persists agents and votes in a MongoDB database.
type Store struct {
	client   *mongo.Client
	agents   *mongo.Collection
	votes    *mongo.Collection
	counters *mongo.Collection
}

// Open connects to uri and uses the named database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return New(client, database), nil
}

// New wraps a connected client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		agents:   db.Collection(AgentsCollection),
		votes:    db.Collection(VotesCollection),
		counters: db.Collection(CountersCollection),
	}
}

// EnsureIndexes creates the unique and ordering indexes.
// Votes are unique per (agent, category, voter) only when voter_id is a string,
// so anonymous votes never collide.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.agents.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "signature_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("mongo: agent indexes: %w", err)
	}
	_, err := s.votes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "agent_id", Value: 1}, {Key: "category", Value: 1}, {Key: "voter_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"voter_id": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "agent_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: vote indexes: %w", err)
	}
	return nil
}

func (s *Store) CreateAgent(ctx context.Context, a *store.Agent) error {
	if _, err := s.agents.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert agent %s: %w", a.SignatureID, mapError(err))
	}
	return nil
}

func (s *Store) AgentBySignatureID(ctx context.Context, signatureID string) (*store.Agent, error) {
	var a store.Agent
	err := s.agents.FindOne(ctx, bson.M{"signature_id": signatureID}).Decode(&a)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", signatureID, mapError(err))
	}
	return &a, nil
}

func (s *Store) CountAgents(ctx context.Context, claimedOnly bool) (int64, error) {
	filter := bson.M{}
	if claimedOnly {
		filter["claimed"] = true
	}
	n, err := s.agents.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return n, nil
}

func (s *Store) RecentAgents(ctx context.Context, limit int) ([]store.Agent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.agents.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("recent agents: %w", err)
	}
	var out []store.Agent
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("recent agents: %w", err)
	}
	return out, nil
}

func (s *Store) CreateVote(ctx context.Context, v *store.Vote) error {
	if _, err := s.votes.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("insert vote for %s: %w", v.AgentID, mapError(err))
	}
	return nil
}

func (s *Store) HasVote(ctx context.Context, agentID, category, voterID string) (bool, error) {
	n, err := s.votes.CountDocuments(ctx,
		bson.M{"agent_id": agentID, "category": category, "voter_id": voterID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("has vote: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CountVotes(ctx context.Context) (int64, error) {
	n, err := s.votes.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

func (s *Store) CountVotesForAgent(ctx context.Context, agentID string) (int64, error) {
	n, err := s.votes.CountDocuments(ctx, bson.M{"agent_id": agentID})
	if err != nil {
		return 0, fmt.Errorf("count votes for %s: %w", agentID, err)
	}
	return n, nil
}

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, error) {
	var doc counterDoc
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return doc.Value, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func mapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

var _ store.Store = (*Store)(nil)
