package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Unique index names. DuplicateKeyError.Index carries one of these.
const (
	IndexUsername = "uniq_username"
	IndexEmail    = "uniq_email"
	IndexPairKey  = "uniq_pair_key"
)

// EnsureIndexes creates the indexes the stores rely on. The unique ones are
// what actually prevents two concurrent registrations (or friend adds) from
// both succeeding. Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(IndexUsername).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(IndexEmail).SetUnique(true),
		},
	}

	friendships := []mongo.IndexModel{
		{
			// Partial so edges written before pair_key existed do not collide on null
			Keys: bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().
				SetName(IndexPairKey).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"pair_key": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "updated_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_status_updated"),
		},
		{
			Keys: bson.D{
				{Key: "friend_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "updated_at", Value: -1},
			},
			Options: options.Index().SetName("idx_friend_status_updated"),
		},
	}

	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create user indexes: %w", translate(err))
	}
	if _, err := db.Collection(FriendshipsCollection).Indexes().CreateMany(ctx, friendships); err != nil {
		return fmt.Errorf("create friendship indexes: %w", translate(err))
	}
	return nil
}
