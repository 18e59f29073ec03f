package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Sessions hands out a fresh Mongo connection per logical operation.
// Connections are scoped: acquired, used, and released around each store
// interaction rather than held for the lifetime of a run, so a flaky
// connection only costs the operation that hit it.
type Sessions struct {
	uri    string
	dbName string
}

// NewSessions creates a session factory for the given connection string and
// database name.
func NewSessions(uri, dbName string) *Sessions {
	return &Sessions{uri: uri, dbName: dbName}
}

// Acquire connects and returns the database handle plus a release function.
// The release function must be called on every exit path.
func (s *Sessions) Acquire(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return nil, nil, fmt.Errorf("store: connecting: %w", err)
	}
	release := func() {
		_ = client.Disconnect(context.Background())
	}
	return client.Database(s.dbName), release, nil
}

// Ping verifies the store is reachable. Called once at startup; a failure
// there is process-fatal.
func (s *Sessions) Ping(ctx context.Context) error {
	db, release, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}
