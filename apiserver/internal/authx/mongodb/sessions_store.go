package mongodb

import (
	"context"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sessionsStore struct {
	collection *mongo.Collection
}

// NewSessionsStore returns a MongoDB-based implementation of the
// authx.SessionsStore interface. A TTL index reaps expired sessions so that
// logout is not the only path to cleanup.
func NewSessionsStore(database *mongo.Database) (authx.SessionsStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	var expireAfter int32
	collection := database.Collection("sessions")
	if _, err := collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.M{
					"hashedToken": 1,
				},
			},
			{
				Keys: bson.M{
					"expires": 1,
				},
				Options: &options.IndexOptions{
					ExpireAfterSeconds: &expireAfter,
				},
			},
		},
	); err != nil {
		return nil, errors.Wrap(
			err,
			"error adding indexes to sessions collection",
		)
	}
	return &sessionsStore{
		collection: collection,
	}, nil
}

func (s *sessionsStore) Create(
	ctx context.Context,
	session authx.Session,
) error {
	if _, err := s.collection.InsertOne(ctx, session); err != nil {
		return errors.Wrapf(err, "error inserting new session %q", session.ID)
	}
	return nil
}

func (s *sessionsStore) GetByHashedToken(
	ctx context.Context,
	hashedToken string,
) (authx.Session, error) {
	session := authx.Session{}
	res := s.collection.FindOne(ctx, bson.M{"hashedToken": hashedToken})
	if res.Err() == mongo.ErrNoDocuments {
		return session, &meta.ErrNotFound{
			Type: "Session",
		}
	}
	if res.Err() != nil {
		return session, errors.Wrap(
			res.Err(),
			"error finding session by hashed token",
		)
	}
	if err := res.Decode(&session); err != nil {
		return session, errors.Wrap(err, "error decoding session")
	}
	return session, nil
}

func (s *sessionsStore) DeleteByHashedToken(
	ctx context.Context,
	hashedToken string,
) error {
	// Deliberately indifferent to whether anything matched: deleting a session
	// that never existed, or was already deleted, is not an error.
	if _, err := s.collection.DeleteMany(
		ctx,
		bson.M{"hashedToken": hashedToken},
	); err != nil {
		return errors.Wrap(err, "error deleting session by hashed token")
	}
	return nil
}
