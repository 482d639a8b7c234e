package user

import (
	"context"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/module/user/model"
	"github.com/anirbanjana883/ZYRA-backend/tools/errs"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(model.UserTableName)}
}

func (s *Store) Get(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

// SetOnline flips the durable online flag on attach.
func (s *Store) SetOnline(ctx context.Context, userID string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"is_online": true, "update_time": time.Now()}})
	return errors.Wrap(err, "set online")
}

// SetOffline flips the flag off and records last-seen on detach.
func (s *Store) SetOffline(ctx context.Context, userID string, lastSeen time.Time) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"is_online": false, "last_seen": lastSeen, "update_time": time.Now()}})
	return errors.Wrap(err, "set offline")
}

// Followers resolves the follower set of userID at call time. Used by the
// upload fan-out; late followers do not get retroactive notifications
// because the set is read exactly once per upload.
func (s *Store) Followers(ctx context.Context, userID string) ([]string, error) {
	var u struct {
		Followers []string `bson:"followers"`
	}
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find followers")
	}
	return u.Followers, nil
}
