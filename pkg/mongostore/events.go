package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func (d *DB) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	if err := d.db.Collection(eventsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, mapError(err))
	}
	return &e, nil
}

func (d *DB) ListEvents(ctx context.Context, filter db.EventFilter) ([]model.Event, error) {
	q := bson.M{}
	if filter.OrganizerEmail != "" {
		q["organizerEmail"] = filter.OrganizerEmail
	}
	if filter.FromDate != "" {
		q["date"] = bson.M{"$gte": filter.FromDate}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := d.db.Collection(eventsCollection).Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", mapError(err))
	}

	var events []model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", mapError(err))
	}
	return events, nil
}

func (d *DB) InsertEvent(ctx context.Context, event *model.Event) error {
	if _, err := d.db.Collection(eventsCollection).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert event: %w", mapError(err))
	}
	return nil
}

// UpdateEvent overwrites the mutable fields; the organizer and creation time are kept
func (d *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	update := bson.M{"$set": bson.M{
		"category":       event.Category,
		"description":    event.Description,
		"date":           event.Date,
		"time":           event.Time,
		"location":       event.Location,
		"volunteerHours": event.VolunteerHours,
		"images":         event.Images,
		"updatedAt":      event.UpdatedAt,
	}}
	res, err := d.db.Collection(eventsCollection).UpdateOne(ctx, bson.M{"_id": event.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", mapError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update event %s: %w", event.ID, model.ErrNotFound)
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	res, err := d.db.Collection(eventsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", mapError(err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("failed to delete event %s: %w", id, model.ErrNotFound)
	}
	return nil
}
