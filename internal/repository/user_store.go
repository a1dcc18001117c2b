package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/niknak-backend/internal/models"
)

const UsersCollection = "users"

// UserStore is the identity store. Every returned user has had
// ApplyDefaults called on it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByLogin matches either the username or the email.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// FindByIDOrUsername matches the username, or the id when q is a valid ObjectID.
	FindByIDOrUsername(ctx context.Context, q string) (*models.User, error)
	// FindByIDs returns the users that exist, keyed by id. Order is not defined.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	// UsernameTaken and EmailTaken ignore the user with id exclude
	// (pass primitive.NilObjectID to check everyone).
	UsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error)
}

// UserUpdate lists the profile fields to $set; nil fields are left alone.
type UserUpdate struct {
	Username   *string
	Email      *string
	AvatarName *string
	AvatarURL  *string
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.AvatarName == nil && u.AvatarURL == nil
}

// Fields returns the document fields the update sets, updated_at excluded.
func (u UserUpdate) Fields() bson.M {
	set := bson.M{}
	if u.Username != nil {
		set["username"] = *u.Username
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.AvatarName != nil {
		set["avatar_name"] = *u.AvatarName
	}
	if u.AvatarURL != nil {
		set["avatar_url"] = *u.AvatarURL
	}
	return set
}

type MongoUserStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{
		col: db.Collection(UsersCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoUserStore) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}})
}

func (s *MongoUserStore) FindByIDOrUsername(ctx context.Context, q string) (*models.User, error) {
	or := bson.A{bson.M{"username": q}}
	if id, err := primitive.ObjectIDFromHex(q); err == nil {
		or = append(or, bson.M{"_id": id})
	}
	return s.findOne(ctx, bson.M{"$or": or})
}

func (s *MongoUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	found := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", translate(err))
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		u.ApplyDefaults()
		found[u.ID] = &u
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", translate(err))
	}
	return found, nil
}

func (s *MongoUserStore) UsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	return s.exists(ctx, "username", username, exclude)
}

func (s *MongoUserStore) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return s.exists(ctx, "email", email, exclude)
}

func (s *MongoUserStore) Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	set := upd.Fields()
	set["updated_at"] = s.now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", translate(err))
	}
	u.ApplyDefaults()
	return &u, nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	u.ApplyDefaults()
	return &u, nil
}

func (s *MongoUserStore) exists(ctx context.Context, field, value string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{field: value}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.col.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s: %w", field, translate(err))
	}
	return true, nil
}
