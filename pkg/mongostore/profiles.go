package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

func (d *DB) GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := d.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": email}).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", email, mapError(err))
	}
	return &p, nil
}

func (d *DB) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := d.db.Collection(usersCollection).ReplaceOne(ctx, bson.M{"_id": p.EmailAddress}, p, opts); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", mapError(err))
	}
	return nil
}
