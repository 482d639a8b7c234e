package notification

import (
	"context"

	"github.com/anirbanjana883/ZYRA-backend/module/notification/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(model.NotificationTableName)}
}

func (s *Store) Create(ctx context.Context, n *model.Notification) error {
	_, err := s.coll.InsertOne(ctx, n)
	return errors.Wrap(err, "insert notification")
}

// HasUndismissedLike reports whether an unread like notification already
// exists for the (sender, receiver, target) triple. Backs the like-dedup
// rule: a re-like while the previous notification is still outstanding
// creates nothing.
func (s *Store) HasUndismissedLike(ctx context.Context, sender, receiver, targetRef string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{
		"sender":     sender,
		"receiver":   receiver,
		"type":       model.TypeLike,
		"target_ref": targetRef,
		"is_read":    false,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count like notifications")
	}
	return n > 0, nil
}

// UnreadByReceiver returns the receiver's unread notifications newest-first.
func (s *Store) UnreadByReceiver(ctx context.Context, receiver string) ([]*model.Notification, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"receiver": receiver, "is_read": false},
		options.Find().SetSort(bson.D{{Key: "create_time", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find unread notifications")
	}
	defer cur.Close(ctx)

	var out []*model.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode unread notifications")
	}
	return out, nil
}

func (s *Store) ListByReceiver(ctx context.Context, receiver string, limit int64) ([]*model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "create_time", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.coll.Find(ctx, bson.M{"receiver": receiver}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find notifications")
	}
	defer cur.Close(ctx)

	var out []*model.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode notifications")
	}
	return out, nil
}

func (s *Store) CountUnread(ctx context.Context, receiver string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"receiver": receiver, "is_read": false})
	return n, errors.Wrap(err, "count unread notifications")
}

// MarkRead flips is_read on the given ids, scoped to the receiver so one
// user cannot dismiss another's entries.
func (s *Store) MarkRead(ctx context.Context, receiver string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"receiver": receiver, "notification_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"is_read": true}})
	return errors.Wrap(err, "mark notifications read")
}

func (s *Store) MarkAllRead(ctx context.Context, receiver string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"receiver": receiver, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return errors.Wrap(err, "mark all notifications read")
}

func (s *Store) Delete(ctx context.Context, receiver, notificationID string) error {
	_, err := s.coll.DeleteOne(ctx,
		bson.M{"receiver": receiver, "notification_id": notificationID})
	return errors.Wrap(err, "delete notification")
}

// DeleteByTarget cascades content deletion: when a post/loop/comment goes
// away every notification pointing at it goes with it.
func (s *Store) DeleteByTarget(ctx context.Context, targetRef string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"target_ref": targetRef})
	if err != nil {
		return 0, errors.Wrap(err, "delete notifications by target")
	}
	return res.DeletedCount, nil
}
