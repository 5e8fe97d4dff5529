// Package mongobackend is a MongoDB-backed states.Backend: an in-process
// LRU-free cache mirror backed by a durable "states" collection, one
// document per fingerprint. Grounded on the teacher's
// internal/storage/database.go MongoStorage — same connect/ping/
// context-timeout-per-call shape, generalized from "append scraped items"
// to "upsert per-fingerprint state documents".
package mongobackend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/scoregoat/internal/types"
)

// Backend is a MongoDB-backed states.Backend.
type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[types.Fingerprint]types.State
	dirty map[types.Fingerprint]types.State
}

type stateDoc struct {
	Fingerprint string `bson:"_id"`
	State       int8   `bson:"state"`
}

// New connects to MongoDB and returns a Backend backed by the given
// database/collection.
func New(uri, database, collection string, logger *slog.Logger) (*Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &Backend{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_states_backend"),
		cache:      make(map[types.Fingerprint]types.State),
		dirty:      make(map[types.Fingerprint]types.State),
	}, nil
}

// Fetch bulk-loads cache entries for the given fingerprints from Mongo.
func (b *Backend) Fetch(fingerprints []types.Fingerprint) error {
	if len(fingerprints) == 0 {
		return nil
	}

	ids := make([]string, len(fingerprints))
	for i, fp := range fingerprints {
		ids[i] = string(fp)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cur, err := b.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("mongodb find: %w", err)
	}
	defer cur.Close(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, fp := range fingerprints {
		if _, ok := b.cache[fp]; !ok {
			b.cache[fp] = types.NotCrawled
		}
	}
	for cur.Next(ctx) {
		var doc stateDoc
		if err := cur.Decode(&doc); err != nil {
			b.logger.Warn("states doc decode failed", "error", err)
			continue
		}
		b.cache[types.Fingerprint(doc.Fingerprint)] = types.State(doc.State)
	}
	return cur.Err()
}

// SetStates copies each request's cached state into the request.
func (b *Backend) SetStates(requests []*types.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range requests {
		if r == nil {
			continue
		}
		r.State = b.cache[r.Fingerprint]
	}
	return nil
}

// UpdateCache writes each request's current state back into the in-process
// cache and marks it dirty for the next Flush.
func (b *Backend) UpdateCache(requests []*types.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range requests {
		if r == nil {
			continue
		}
		b.cache[r.Fingerprint] = r.State
		b.dirty[r.Fingerprint] = r.State
	}
	return nil
}

// Flush persists dirty cache entries to MongoDB via bulk upserts. Safe to
// call concurrently with Fetch/SetStates/UpdateCache only because the
// single-threaded cooperative scheduler guarantees no such concurrency
// (spec.md §5) — this method itself does not add further locking beyond
// the mutex needed to snapshot-and-clear the dirty set.
func (b *Backend) Flush() error {
	b.mu.Lock()
	dirty := b.dirty
	b.dirty = make(map[types.Fingerprint]types.State)
	b.mu.Unlock()

	if len(dirty) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(dirty))
	for fp, state := range dirty {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": string(fp)}).
			SetUpdate(bson.M{"$set": bson.M{"state": int8(state)}}).
			SetUpsert(true))
	}

	_, err := b.collection.BulkWrite(ctx, models)
	if err != nil {
		return fmt.Errorf("mongodb bulk write: %w", err)
	}
	b.logger.Debug("states flushed", "count", len(models))
	return nil
}

// Close disconnects the Mongo client.
func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}
