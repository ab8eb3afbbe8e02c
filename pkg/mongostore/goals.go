package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

func (d *DB) ListGoals(ctx context.Context, email string) ([]model.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "month", Value: -1}, {Key: "category", Value: 1}})
	cur, err := d.db.Collection(goalsCollection).Find(ctx, bson.M{"emailAddress": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", mapError(err))
	}

	var goals []model.Goal
	if err := cur.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", mapError(err))
	}
	return goals, nil
}

func (d *DB) InsertGoal(ctx context.Context, g *model.Goal) error {
	if _, err := d.db.Collection(goalsCollection).InsertOne(ctx, g); err != nil {
		return fmt.Errorf("failed to insert goal: %w", mapError(err))
	}
	return nil
}

func (d *DB) ListDueGoals(ctx context.Context, before time.Time) ([]model.Goal, error) {
	q := bson.M{
		"remindersEnabled": true,
		"nextReminderAt":   bson.M{"$lte": before},
	}
	opts := options.Find().SetSort(bson.D{{Key: "nextReminderAt", Value: 1}})
	cur, err := d.db.Collection(goalsCollection).Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due goals: %w", mapError(err))
	}

	var goals []model.Goal
	if err := cur.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode due goals: %w", mapError(err))
	}
	return goals, nil
}

func (d *DB) MarkGoalReminded(ctx context.Context, id string, next *time.Time) error {
	update := bson.M{"$unset": bson.M{"nextReminderAt": ""}}
	if next != nil {
		update = bson.M{"$set": bson.M{"nextReminderAt": *next}}
	}
	res, err := d.db.Collection(goalsCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update goal reminder: %w", mapError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update goal %s: %w", id, model.ErrNotFound)
	}
	return nil
}
