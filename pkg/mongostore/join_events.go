package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func (d *DB) GetJoinEvent(ctx context.Context, id string) (*model.JoinEvent, error) {
	raw, err := d.db.Collection(joinEventsCollection).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		return nil, fmt.Errorf("failed to get join event %s: %w", id, mapError(err))
	}
	j := joinEventFromRaw(raw)
	return &j, nil
}

func joinEventQuery(filter db.JoinEventFilter) bson.M {
	q := bson.M{}
	if filter.EmailAddress != "" {
		q["emailAddress"] = filter.EmailAddress
	}
	if filter.EventID != "" {
		q["eventId"] = filter.EventID
	}
	if filter.Status != "" {
		q["status"] = bson.M{"$in": db.StatusSpellings(filter.Status)}
	}
	if filter.WithoutEventID {
		q["$or"] = bson.A{
			bson.M{"eventId": bson.M{"$exists": false}},
			bson.M{"eventId": nil},
			bson.M{"eventId": ""},
		}
	}
	return q
}

// QueryJoinEvents retrieves join requests matching the filter in joined order
func (d *DB) QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := d.db.Collection(joinEventsCollection).Find(ctx, joinEventQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query join events: %w", mapError(err))
	}

	defer cur.Close(context.Background())

	var joinEvents []model.JoinEvent
	for cur.Next(ctx) {
		joinEvents = append(joinEvents, joinEventFromRaw(cur.Current))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to read join events: %w", mapError(err))
	}
	return joinEvents, nil
}

func (d *DB) InsertJoinEvent(ctx context.Context, j *model.JoinEvent) error {
	j.Revision = 0
	if _, err := d.db.Collection(joinEventsCollection).InsertOne(ctx, j); err != nil {
		return fmt.Errorf("failed to insert join event: %w", mapError(err))
	}
	return nil
}

// UpdateJoinEventStatus sets the status if the stored revision still matches and bumps the revision
func (d *DB) UpdateJoinEventStatus(ctx context.Context, id string, expectedRevision int, status model.Status, decidedAt time.Time) error {
	coll := d.db.Collection(joinEventsCollection)

	// legacy documents predate the revision field; treat a missing one as 0
	revisionMatch := bson.M{"revision": expectedRevision}
	if expectedRevision == 0 {
		revisionMatch = bson.M{"$or": bson.A{
			bson.M{"revision": 0},
			bson.M{"revision": bson.M{"$exists": false}},
		}}
	}
	filter := bson.M{"$and": bson.A{bson.M{"_id": id}, revisionMatch}}
	update := bson.M{
		"$set": bson.M{"status": status, "decidedAt": decidedAt},
		"$inc": bson.M{"revision": 1},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update join event status: %w", mapError(err))
	}
	if res.MatchedCount == 1 {
		return nil
	}

	err = coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to update join event %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check join event %s: %w", id, mapError(err))
	}
	return fmt.Errorf("join event %s changed since revision %d: %w", id, expectedRevision, model.ErrConflict)
}

// SubscribeJoinEvents watches the join request collection and calls fn with the full document
// after every insert, update or replace. Change streams need a replica set.
func (d *DB) SubscribeJoinEvents(ctx context.Context, fn func(model.JoinEvent)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := d.db.Collection(joinEventsCollection).Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to open change stream: %w", mapError(err))
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		doc, ok := stream.Current.Lookup("fullDocument").DocumentOK()
		if !ok {
			// document deleted before the lookup ran
			d.logger.Debug("Skipping change without a full document",
				zap.String("operation", textValue(stream.Current.Lookup("operationType"))))
			continue
		}
		j := joinEventFromRaw(doc)
		if j.ID == "" {
			d.logger.Warn("Skipping join event change without an id", zap.String("document", doc.String()))
			continue
		}
		fn(j)
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("change stream failed: %w", mapError(err))
	}
	return nil
}
