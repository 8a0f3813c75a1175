// Package sessionstore checkpoints in-progress proofing sessions so a user
// can resume a flow after a process restart or from another instance. The
// store holds snapshots, not live sessions; callers restore a snapshot into a
// fresh Session.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"idport/internal/idv/models"
	"idport/internal/platform/redis"
	dErrors "idport/pkg/domain-errors"
)

// DefaultTTL matches the proofing flow's session lifetime.
const DefaultTTL = 30 * time.Minute

// Store persists session snapshots keyed by user.
type Store interface {
	Save(ctx context.Context, userID uuid.UUID, snap models.SessionSnapshot) error
	Load(ctx context.Context, userID uuid.UUID) (models.SessionSnapshot, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RedisStore keeps snapshots in Redis with a sliding TTL: every Save renews
// the expiry, so a session stays alive as long as the user keeps submitting.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A zero ttl falls back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return fmt.Sprintf("idv:session:%s", userID)
}

func (s *RedisStore) Save(ctx context.Context, userID uuid.UUID, snap models.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode session snapshot")
	}
	if err := s.client.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session snapshot")
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, userID uuid.UUID) (models.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if err == goredis.Nil {
		return models.SessionSnapshot{}, dErrors.New(dErrors.CodeNotFound, "no session in progress")
	}
	if err != nil {
		return models.SessionSnapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session snapshot")
	}

	var snap models.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.SessionSnapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode session snapshot")
	}
	return snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session snapshot")
	}
	return nil
}
