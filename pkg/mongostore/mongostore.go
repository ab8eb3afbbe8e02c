// Package mongostore implements db.Database on MongoDB.
//
// Documents use the model types' bson tags directly. Join requests carry a revision counter
// that status updates compare-and-swap on.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const (
	eventsCollection     = "events"
	joinEventsCollection = "joinEvents"
	usersCollection      = "users"
	goalsCollection      = "goals"
)

// DB provides database operations using MongoDB
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewDB connects to MongoDB and pings the primary
func NewDB(ctx context.Context, uri, database string, logger *zap.Logger) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", mapError(err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", mapError(err))
	}

	return &DB{client: client, db: client.Database(database), logger: logger}, nil
}

// newWithDatabase wraps an existing database handle, used by tests with mtest
func newWithDatabase(db *mongo.Database) *DB {
	return &DB{db: db, logger: zap.NewNop()}
}

// Close disconnects the client
func (d *DB) Close() {
	if d.client != nil {
		_ = d.client.Disconnect(context.Background())
	}
}

// EnsureIndexes creates the secondary indexes the queries rely on
func (d *DB) EnsureIndexes(ctx context.Context) ([]string, error) {
	specs := map[string][]mongo.IndexModel{
		eventsCollection: {
			{Keys: bson.D{{Key: "organizerEmail", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		joinEventsCollection: {
			{Keys: bson.D{{Key: "emailAddress", Value: 1}}},
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "status", Value: 1}}},
		},
		goalsCollection: {
			{Keys: bson.D{{Key: "emailAddress", Value: 1}}},
			{Keys: bson.D{{Key: "nextReminderAt", Value: 1}}},
		},
	}

	var created []string
	for _, coll := range []string{eventsCollection, joinEventsCollection, goalsCollection} {
		names, err := d.db.Collection(coll).Indexes().CreateMany(ctx, specs[coll])
		if err != nil {
			return created, fmt.Errorf("failed to create indexes on %s: %w", coll, mapError(err))
		}
		for _, n := range names {
			created = append(created, coll+"."+n)
		}
	}
	return created, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %w", model.ErrTransient, err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", model.ErrConflict, err)
	}
	return err
}
