package message

import (
	"context"

	"github.com/anirbanjana883/ZYRA-backend/module/message/model"
	"github.com/anirbanjana883/ZYRA-backend/tools/errs"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(model.MessageTableName)}
}

func (s *Store) Create(ctx context.Context, m *model.Message) error {
	_, err := s.coll.InsertOne(ctx, m)
	return errors.Wrap(err, "insert message")
}

func (s *Store) Get(ctx context.Context, messageID string) (*model.Message, error) {
	var m model.Message
	err := s.coll.FindOne(ctx, bson.M{"message_id": messageID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WithDetail("message " + messageID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find message")
	}
	return &m, nil
}

// AdvanceStatus moves a message forward in its lifecycle. The filter only
// matches documents whose current status precedes "to", so a racing or
// replayed advance can never move the status backwards; in that case it
// reports false with no error.
func (s *Store) AdvanceStatus(ctx context.Context, messageID, to string) (bool, error) {
	before := model.StatusBefore(to)
	if len(before) == 0 {
		return false, errs.New("unknown message status: " + to)
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"message_id": messageID, "status": bson.M{"$in": before}},
		bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return false, errors.Wrap(err, "advance message status")
	}
	return res.ModifiedCount > 0, nil
}
