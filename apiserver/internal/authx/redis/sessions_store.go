package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const keyPrefix = "dextro:sessions:"

type sessionsStore struct {
	client *redis.Client
}

// NewSessionsStore returns a Redis-based implementation of the
// authx.SessionsStore interface. Sessions are stored as JSON under a key
// derived from the hashed token, with a TTL matching the session's expiry, so
// Redis itself reaps what logout doesn't. This store suits horizontally
// scaled deployments that want session state out of the primary database.
func NewSessionsStore(client *redis.Client) authx.SessionsStore {
	return &sessionsStore{
		client: client,
	}
}

func sessionKey(hashedToken string) string {
	return keyPrefix + hashedToken
}

func (s *sessionsStore) Create(
	_ context.Context,
	session authx.Session,
) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(err, "error marshaling session %q", session.ID)
	}
	ttl := time.Until(session.Expires)
	if ttl <= 0 {
		// Nothing to store; the session is already lapsed.
		return nil
	}
	if err := s.client.Set(
		sessionKey(session.HashedToken),
		sessionJSON,
		ttl,
	).Err(); err != nil {
		return errors.Wrapf(err, "error storing session %q", session.ID)
	}
	return nil
}

func (s *sessionsStore) GetByHashedToken(
	_ context.Context,
	hashedToken string,
) (authx.Session, error) {
	session := authx.Session{}
	sessionJSON, err := s.client.Get(sessionKey(hashedToken)).Bytes()
	if err == redis.Nil {
		return session, &meta.ErrNotFound{
			Type: "Session",
		}
	}
	if err != nil {
		return session, errors.Wrap(
			err,
			"error retrieving session by hashed token",
		)
	}
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return session, errors.Wrap(err, "error unmarshaling session")
	}
	return session, nil
}

func (s *sessionsStore) DeleteByHashedToken(
	_ context.Context,
	hashedToken string,
) error {
	if err := s.client.Del(sessionKey(hashedToken)).Err(); err != nil {
		return errors.Wrap(err, "error deleting session by hashed token")
	}
	return nil
}
