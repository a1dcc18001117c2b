package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/niknak-backend/internal/models"
)

const FriendshipsCollection = "friendships"

// FriendshipStore holds friendship edges.
type FriendshipStore interface {
	// Exists reports whether an edge links a and b in either orientation.
	Exists(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	// Create inserts the edge. A second edge for the same pair fails with
	// a *DuplicateKeyError on IndexPairKey.
	Create(ctx context.Context, f *models.Friendship) error
	// ListAccepted returns the accepted edges touching userID, most
	// recently updated first.
	ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
}

type MongoFriendshipStore struct {
	col *mongo.Collection
}

func NewMongoFriendshipStore(db *mongo.Database) *MongoFriendshipStore {
	return &MongoFriendshipStore{col: db.Collection(FriendshipsCollection)}
}

func (s *MongoFriendshipStore) Exists(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"user_id": a, "friend_id": b},
		bson.M{"user_id": b, "friend_id": a},
	}}

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.col.FindOne(ctx, filter, opts).Err()
	switch translate(err) {
	case nil:
		return true, nil
	case ErrNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("check friendship: %w", translate(err))
	}
}

func (s *MongoFriendshipStore) Create(ctx context.Context, f *models.Friendship) error {
	if f.PairKey == "" {
		f.PairKey = models.PairKey(f.UserID, f.FriendID)
	}
	res, err := s.col.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("insert friendship: %w", translate(err))
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		f.ID = id
	}
	return nil
}

func (s *MongoFriendshipStore) ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"user_id": userID},
			bson.M{"friend_id": userID},
		},
		"status": models.FriendshipAccepted,
	}

	// _id breaks updated_at ties so the newest insert still comes first
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find friendships: %w", translate(err))
	}
	defer cur.Close(ctx)

	edges := []models.Friendship{}
	if err := cur.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("decode friendships: %w", translate(err))
	}
	return edges, nil
}
